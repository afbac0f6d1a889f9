package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanPolicy holds the admin-configured parameters governing loan terms
// and governance thresholds. Singleton, mutated only through admin setters.
type LoanPolicy struct {
	ConsensusThresholdBps int64           `json:"consensus_threshold_bps" db:"consensus_threshold_bps"`
	MembershipFee         decimal.Decimal `json:"membership_fee" db:"membership_fee"`
	MinMembershipDuration time.Duration   `json:"min_membership_duration" db:"min_membership_duration"`
	MaxLoanDurationDays   int             `json:"max_loan_duration_days" db:"max_loan_duration_days"`
	MinInterestRateBps    int64           `json:"min_interest_rate_bps" db:"min_interest_rate_bps"`
	MaxInterestRateBps    int64           `json:"max_interest_rate_bps" db:"max_interest_rate_bps"`
	CooldownPeriod        time.Duration   `json:"cooldown_period" db:"cooldown_period"`
	MaxLoanRatioBps       int64           `json:"max_loan_ratio_bps" db:"max_loan_ratio_bps"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy safe to mutate inside a changeset.
func (p *LoanPolicy) Clone() *LoanPolicy {
	c := *p
	return &c
}

// DTOs for admin requests

type InitializeRequest struct {
	Admins                []string `json:"admins" validate:"required,min=1"`
	ConsensusThresholdBps int64    `json:"consensus_threshold_bps" validate:"required"`
	MembershipFee         decimal.Decimal `json:"membership_fee" validate:"required"`
}

type SetThresholdRequest struct {
	ThresholdBps int64 `json:"threshold_bps" validate:"required"`
}

type SetFeeRequest struct {
	Fee decimal.Decimal `json:"fee" validate:"required"`
}

type SetDurationRequest struct {
	Seconds int64 `json:"seconds" validate:"required"`
}

type SetLoanDurationRequest struct {
	Days int `json:"days" validate:"required"`
}

type SetRateRangeRequest struct {
	MinBps int64 `json:"min_bps" validate:"required"`
	MaxBps int64 `json:"max_bps" validate:"required"`
}

type SetRatioRequest struct {
	RatioBps int64 `json:"ratio_bps" validate:"required"`
}

type AddAdminRequest struct {
	Address string `json:"address" validate:"required"`
}
