package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Proposal lifecycle phases, derived from timestamps and status at call time.
const (
	PhaseEditing  = "editing"
	PhaseVoting   = "voting"
	PhaseExecuted = "executed"
	PhaseExpired  = "expired"
	PhaseClosed   = "closed"
)

const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
	ProposalStatusExecuted = "executed"
	ProposalStatusExpired  = "expired"
)

// LoanProposal is a member's request for a loan from the pooled treasury.
// Terms are recomputed on every edit and frozen once the editing window closes.
type LoanProposal struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Borrower        string          `json:"borrower" db:"borrower"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	InterestRateBps int64           `json:"interest_rate_bps" db:"interest_rate_bps"`
	DurationDays    int             `json:"duration_days" db:"duration_days"`
	TotalRepayment  decimal.Decimal `json:"total_repayment" db:"total_repayment"`
	Status          string          `json:"status" db:"status"`
	ForVotes        int64           `json:"for_votes" db:"for_votes"`
	AgainstVotes    int64           `json:"against_votes" db:"against_votes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	EditingEndsAt   time.Time       `json:"editing_ends_at" db:"editing_ends_at"`
	VotingEndsAt    time.Time       `json:"voting_ends_at" db:"voting_ends_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// Voters is the per-proposal has-voted set, persisted as vote rows.
	Voters map[string]bool `json:"-" db:"-"`
}

// Phase derives the current lifecycle phase from stored timestamps.
// There is no background transition; callers compare against "now".
func (p *LoanProposal) Phase(now time.Time) string {
	switch p.Status {
	case ProposalStatusExecuted:
		return PhaseExecuted
	case ProposalStatusExpired:
		return PhaseExpired
	case ProposalStatusApproved, ProposalStatusRejected:
		return PhaseClosed
	}
	if now.Before(p.EditingEndsAt) {
		return PhaseEditing
	}
	if now.Before(p.VotingEndsAt) {
		return PhaseVoting
	}
	return PhaseExpired
}

// HasVoted reports whether the address is in the proposal's voter set.
func (p *LoanProposal) HasVoted(address string) bool {
	return p.Voters[address]
}

// Clone returns a deep copy safe to mutate inside a changeset.
func (p *LoanProposal) Clone() *LoanProposal {
	c := *p
	c.Voters = make(map[string]bool, len(p.Voters))
	for k, v := range p.Voters {
		c.Voters[k] = v
	}
	return &c
}

// Vote records one member's ballot on a proposal.
type Vote struct {
	ProposalID uuid.UUID `json:"proposal_id" db:"proposal_id"`
	Voter      string    `json:"voter" db:"voter"`
	Support    bool      `json:"support" db:"support"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type RequestLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type EditLoanProposalRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type VoteRequest struct {
	Support *bool `json:"support" validate:"required"`
}

type LoanProposalResponse struct {
	Proposal *LoanProposal `json:"proposal"`
	Phase    string        `json:"phase"`
}
