package dao

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
	"github.com/p2pdao/lending-dao/pkg/utils"
)

// RepayLoan credits a payment against an active loan. Partial repayments
// accumulate; a payment past the remaining due is rejected outright. The
// payment that settles the loan distributes the interest equally across
// active members, with the integer remainder retained in the treasury.
func (d *DAO) RepayLoan(ctx context.Context, caller string, loanID uuid.UUID, amount decimal.Decimal) (*domain.RepayLoanResponse, error) {
	var out *domain.RepayLoanResponse
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		loan, ok := t.loan(loanID)
		if !ok {
			return customError.WrapNotFound("Loan", loanID.String())
		}
		if loan.Status != domain.LoanStatusActive {
			return customError.WrapLoanNotActive(loanID.String())
		}
		if !amount.IsPositive() || !utils.IsWholeAmount(amount) {
			return customError.WrapInvalidAmount("repayment must be a positive whole number of base units")
		}

		remaining := loan.Remaining()
		if amount.GreaterThan(remaining) {
			return customError.WrapExcessPayment(remaining.String(), amount.String())
		}

		loan.AmountRepaid = loan.AmountRepaid.Add(amount)
		t.stageLoan(loan)

		treasury := t.treasuryState()
		treasury.Balance = treasury.Balance.Add(amount)
		treasury.UpdatedAt = t.now

		t.emit(domain.EventLoanRepayment, loanID.String(), map[string]interface{}{
			"payer":         caller,
			"amount":        amount.String(),
			"amount_repaid": loan.AmountRepaid.String(),
			"remaining":     loan.Remaining().String(),
		})

		out = &domain.RepayLoanResponse{
			Loan:                loan,
			InterestDistributed: decimal.Zero,
			InterestPerMember:   decimal.Zero,
			RemainderToTreasury: decimal.Zero,
		}

		if !loan.AmountRepaid.Equal(loan.TotalRepayment) {
			return nil
		}

		// Final settlement: close the loan and accrue the interest.
		loan.Status = domain.LoanStatusRepaid
		t.stageLoan(loan)

		borrower, ok := t.member(loan.Borrower)
		if ok {
			borrower.HasActiveLoan = false
			t.stageMember(borrower)
		}

		t.emit(domain.EventLoanRepaid, loanID.String(), map[string]interface{}{
			"borrower":        loan.Borrower,
			"total_repayment": loan.TotalRepayment.String(),
		})

		interest := loan.TotalRepayment.Sub(loan.Principal)
		if interest.IsPositive() {
			addrs := t.activeMemberAddrs()
			share, remainder := utils.SplitEqually(interest, int64(len(addrs)))
			if share.IsPositive() {
				for _, addr := range addrs {
					m, _ := t.member(addr)
					m.PendingRewards = m.PendingRewards.Add(share)
					t.stageMember(m)
				}
			}
			t.emit(domain.EventInterestDistributed, loanID.String(), map[string]interface{}{
				"interest":   interest.String(),
				"per_member": share.String(),
				"remainder":  remainder.String(),
				"members":    len(addrs),
			})
			out.InterestDistributed = interest
			out.InterestPerMember = share
			out.RemainderToTreasury = remainder
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimRewards pays out the caller's accumulated interest rewards.
func (d *DAO) ClaimRewards(ctx context.Context, caller string) (decimal.Decimal, error) {
	var claimed decimal.Decimal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		member, ok := t.member(caller)
		if !ok {
			return customError.WrapNotMember(caller)
		}
		if !member.PendingRewards.IsPositive() {
			return customError.WrapNoRewards(caller)
		}

		claimed = member.PendingRewards
		member.PendingRewards = decimal.Zero
		t.stageMember(member)

		treasury := t.treasuryState()
		if treasury.Balance.LessThan(claimed) {
			return customError.WrapInsufficientTreasury(claimed.String(), treasury.Balance.String())
		}
		treasury.Balance = treasury.Balance.Sub(claimed)
		treasury.UpdatedAt = t.now

		t.transfer(domain.TransferKindReward, caller, claimed, caller)

		t.emit(domain.EventRewardsClaimed, caller, map[string]interface{}{
			"amount": claimed.String(),
		})
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return claimed, nil
}
