package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MemberStatusPending  = "pending_payment"
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// Member represents a DAO member and their treasury claim
type Member struct {
	Address        string          `json:"address" db:"address"`
	Status         string          `json:"status" db:"status"`
	JoinedAt       time.Time       `json:"joined_at" db:"joined_at"`
	Contribution   decimal.Decimal `json:"contribution" db:"contribution"`
	ShareBalance   decimal.Decimal `json:"share_balance" db:"share_balance"`
	PendingRewards decimal.Decimal `json:"pending_rewards" db:"pending_rewards"`
	HasActiveLoan  bool            `json:"has_active_loan" db:"has_active_loan"`
	LastLoanAt     *time.Time      `json:"last_loan_at,omitempty" db:"last_loan_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy safe to mutate inside a changeset.
func (m *Member) Clone() *Member {
	c := *m
	if m.LastLoanAt != nil {
		t := *m.LastLoanAt
		c.LastLoanAt = &t
	}
	return &c
}

// DTOs for requests and responses

type RegisterMemberRequest struct {
	Payment decimal.Decimal `json:"payment" validate:"required"`
}

type MemberResponse struct {
	Member        *Member         `json:"member"`
	ExitShare     decimal.Decimal `json:"exit_share"`
	EligibleToLoan bool           `json:"eligible_for_loan"`
}
