package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusRepaid    = "repaid"
	LoanStatusDefaulted = "defaulted"
)

// Loan is a disbursed loan. Total repayment is fixed at proposal-approval
// time: principal plus principal * rate (basis points).
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ProposalID      uuid.UUID       `json:"proposal_id" db:"proposal_id"`
	Borrower        string          `json:"borrower" db:"borrower"`
	Principal       decimal.Decimal `json:"principal" db:"principal"`
	InterestRateBps int64           `json:"interest_rate_bps" db:"interest_rate_bps"`
	TotalRepayment  decimal.Decimal `json:"total_repayment" db:"total_repayment"`
	AmountRepaid    decimal.Decimal `json:"amount_repaid" db:"amount_repaid"`
	Status          string          `json:"status" db:"status"`
	StartedAt       time.Time       `json:"started_at" db:"started_at"`
	DueAt           time.Time       `json:"due_at" db:"due_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining returns the outstanding amount due.
func (l *Loan) Remaining() decimal.Decimal {
	return l.TotalRepayment.Sub(l.AmountRepaid)
}

// Clone returns a copy safe to mutate inside a changeset.
func (l *Loan) Clone() *Loan {
	c := *l
	return &c
}

// LoanTerms is the deterministic result of the rate calculation for a
// requested amount against the current treasury balance.
type LoanTerms struct {
	Amount          decimal.Decimal `json:"amount"`
	InterestRateBps int64           `json:"interest_rate_bps"`
	DurationDays    int             `json:"duration_days"`
	TotalRepayment  decimal.Decimal `json:"total_repayment"`
}

// DTOs for requests and responses

type RepayLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type RepayLoanResponse struct {
	Loan                 *Loan           `json:"loan"`
	InterestDistributed  decimal.Decimal `json:"interest_distributed"`
	InterestPerMember    decimal.Decimal `json:"interest_per_member"`
	RemainderToTreasury  decimal.Decimal `json:"remainder_to_treasury"`
}

type ClaimRewardsResponse struct {
	Member string          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
}
