package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotAdmin             = errors.New("caller is not an admin")
	ErrNotMember            = errors.New("caller is not an active member")
	ErrAlreadyMember        = errors.New("caller is already a member")
	ErrIncorrectFee         = errors.New("payment does not match the membership fee")
	ErrHasActiveLoan        = errors.New("member has an active loan")
	ErrNotEligibleForLoan   = errors.New("member is not eligible for a loan")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrZeroAddress          = errors.New("destination address is empty")
	ErrNotFound             = errors.New("entity not found")
	ErrNotOwner             = errors.New("caller does not own this proposal")
	ErrSelfVote             = errors.New("proposal owner cannot vote on their own proposal")
	ErrAlreadyVoted         = errors.New("caller has already voted on this proposal")
	ErrEditingPeriodOver    = errors.New("editing period is over")
	ErrEditingNotOver       = errors.New("editing period has not ended")
	ErrVotingClosed         = errors.New("proposal is no longer open for voting")
	ErrLoanNotActive        = errors.New("loan is not active")
	ErrInsufficientPayment  = errors.New("payment is less than the amount due")
	ErrExcessPayment        = errors.New("payment exceeds the remaining amount due")
	ErrInsufficientTreasury = errors.New("treasury balance is insufficient")
	ErrNoRewards            = errors.New("no pending rewards to claim")
	ErrInvalidPolicy        = errors.New("policy value out of bounds")
	ErrPaused               = errors.New("contract is paused")
	ErrReentrancy           = errors.New("reentrant call detected")
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrNotInitialized       = errors.New("not initialized")
	ErrTransferFailed       = errors.New("fund transfer failed")
)

// Error codes
const (
	ErrCodeAccessDenied         = "ACCESS_DENIED"
	ErrCodeNotMember            = "NOT_MEMBER"
	ErrCodeAlreadyMember        = "ALREADY_MEMBER"
	ErrCodeIncorrectFee         = "INCORRECT_FEE"
	ErrCodeHasActiveLoan        = "HAS_ACTIVE_LOAN"
	ErrCodeNotEligible          = "NOT_ELIGIBLE_FOR_LOAN"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeZeroAddress          = "ZERO_ADDRESS"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeNotOwner             = "NOT_OWNER"
	ErrCodeSelfVote             = "SELF_VOTE"
	ErrCodeAlreadyVoted         = "ALREADY_VOTED"
	ErrCodeEditingPeriodOver    = "EDITING_PERIOD_OVER"
	ErrCodeEditingNotOver       = "EDITING_NOT_OVER"
	ErrCodeVotingClosed         = "VOTING_CLOSED"
	ErrCodeLoanNotActive        = "LOAN_NOT_ACTIVE"
	ErrCodeInsufficientPayment  = "INSUFFICIENT_PAYMENT"
	ErrCodeExcessPayment        = "EXCESS_PAYMENT"
	ErrCodeInsufficientTreasury = "INSUFFICIENT_TREASURY"
	ErrCodeNoRewards            = "NO_REWARDS"
	ErrCodeInvalidPolicy        = "INVALID_POLICY"
	ErrCodePaused               = "CONTRACT_PAUSED"
	ErrCodeReentrancy           = "REENTRANCY"
	ErrCodeAlreadyInitialized   = "ALREADY_INITIALIZED"
	ErrCodeNotInitialized       = "NOT_INITIALIZED"
	ErrCodeTransferFailed       = "TRANSFER_FAILED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the business error code, or DATABASE_ERROR for unknown errors.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrCodeDatabaseError
}

// Wrap common errors with business context

func WrapNotAdmin(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccessDenied,
		fmt.Sprintf("Address %s is not an admin", address),
		ErrNotAdmin,
	)
}

func WrapNotMember(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotMember,
		fmt.Sprintf("Address %s is not an active member", address),
		ErrNotMember,
	)
}

func WrapAlreadyMember(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyMember,
		fmt.Sprintf("Address %s is already a member", address),
		ErrAlreadyMember,
	)
}

func WrapIncorrectFee(expected, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodeIncorrectFee,
		fmt.Sprintf("Payment %s does not match the membership fee %s", actual, expected),
		ErrIncorrectFee,
	)
}

func WrapHasActiveLoan(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeHasActiveLoan,
		fmt.Sprintf("Member %s has an outstanding loan", address),
		ErrHasActiveLoan,
	)
}

func WrapNotEligible(address, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotEligible,
		fmt.Sprintf("Member %s is not eligible for a loan: %s", address, reason),
		ErrNotEligibleForLoan,
	)
}

func WrapInvalidAmount(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidAmount, message, ErrInvalidAmount)
}

func WrapZeroAddress() *BusinessError {
	return NewBusinessError(ErrCodeZeroAddress, "Destination address must not be empty", ErrZeroAddress)
}

func WrapNotFound(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s %s not found", entity, id),
		ErrNotFound,
	)
}

func WrapNotOwner(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotOwner,
		fmt.Sprintf("Caller is not the owner of proposal %s", id),
		ErrNotOwner,
	)
}

func WrapSelfVote(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeSelfVote,
		fmt.Sprintf("Owner cannot vote on own proposal %s", id),
		ErrSelfVote,
	)
}

func WrapAlreadyVoted(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyVoted,
		fmt.Sprintf("Caller already voted on proposal %s", id),
		ErrAlreadyVoted,
	)
}

func WrapEditingPeriodOver(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeEditingPeriodOver,
		fmt.Sprintf("Editing period for proposal %s is over", id),
		ErrEditingPeriodOver,
	)
}

func WrapEditingNotOver(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeEditingNotOver,
		fmt.Sprintf("Editing period for proposal %s has not ended", id),
		ErrEditingNotOver,
	)
}

func WrapVotingClosed(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeVotingClosed,
		fmt.Sprintf("Proposal %s is no longer open for voting", id),
		ErrVotingClosed,
	)
}

func WrapLoanNotActive(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan %s is not active", id),
		ErrLoanNotActive,
	)
}

func WrapInsufficientPayment(due, paid string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientPayment,
		fmt.Sprintf("Payment %s is less than the amount due %s", paid, due),
		ErrInsufficientPayment,
	)
}

func WrapExcessPayment(remaining, paid string) *BusinessError {
	return NewBusinessError(
		ErrCodeExcessPayment,
		fmt.Sprintf("Payment %s exceeds the remaining amount due %s", paid, remaining),
		ErrExcessPayment,
	)
}

func WrapInsufficientTreasury(requested, balance string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientTreasury,
		fmt.Sprintf("Requested %s exceeds treasury balance %s", requested, balance),
		ErrInsufficientTreasury,
	)
}

func WrapNoRewards(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoRewards,
		fmt.Sprintf("Member %s has no pending rewards", address),
		ErrNoRewards,
	)
}

func WrapInvalidPolicy(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidPolicy, message, ErrInvalidPolicy)
}

func WrapPaused() *BusinessError {
	return NewBusinessError(ErrCodePaused, "Contract is paused", ErrPaused)
}

func WrapReentrancy() *BusinessError {
	return NewBusinessError(ErrCodeReentrancy, "Reentrant mutating call rejected", ErrReentrancy)
}

func WrapAlreadyInitialized() *BusinessError {
	return NewBusinessError(ErrCodeAlreadyInitialized, "DAO is already initialized", ErrAlreadyInitialized)
}

func WrapNotInitialized() *BusinessError {
	return NewBusinessError(ErrCodeNotInitialized, "DAO has not been initialized", ErrNotInitialized)
}

func WrapTransferFailed(destination string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeTransferFailed,
		fmt.Sprintf("Transfer to %s failed", destination),
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
