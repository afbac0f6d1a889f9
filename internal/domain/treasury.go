package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TreasuryProposal asks the membership to approve an outbound transfer
// from the pooled treasury.
type TreasuryProposal struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Proposer     string          `json:"proposer" db:"proposer"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Destination  string          `json:"destination" db:"destination"`
	Reason       string          `json:"reason" db:"reason"`
	Status       string          `json:"status" db:"status"`
	ForVotes     int64           `json:"for_votes" db:"for_votes"`
	AgainstVotes int64           `json:"against_votes" db:"against_votes"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	VotingEndsAt time.Time       `json:"voting_ends_at" db:"voting_ends_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Voters map[string]bool `json:"-" db:"-"`
}

// Phase derives the lifecycle phase; treasury proposals vote from creation.
func (p *TreasuryProposal) Phase(now time.Time) string {
	switch p.Status {
	case ProposalStatusExecuted:
		return PhaseExecuted
	case ProposalStatusExpired:
		return PhaseExpired
	case ProposalStatusApproved, ProposalStatusRejected:
		return PhaseClosed
	}
	if now.Before(p.VotingEndsAt) {
		return PhaseVoting
	}
	return PhaseExpired
}

// HasVoted reports whether the address is in the proposal's voter set.
func (p *TreasuryProposal) HasVoted(address string) bool {
	return p.Voters[address]
}

// Clone returns a deep copy safe to mutate inside a changeset.
func (p *TreasuryProposal) Clone() *TreasuryProposal {
	c := *p
	c.Voters = make(map[string]bool, len(p.Voters))
	for k, v := range p.Voters {
		c.Voters[k] = v
	}
	return &c
}

// TreasuryState is the singleton holding the pooled balance and the
// global flags mutated only through admin operations.
type TreasuryState struct {
	Balance     decimal.Decimal `json:"balance" db:"balance"`
	Paused      bool            `json:"paused" db:"paused"`
	Initialized bool            `json:"initialized" db:"initialized"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy safe to mutate inside a changeset.
func (t *TreasuryState) Clone() *TreasuryState {
	c := *t
	return &c
}

// Transfer kinds recorded in the payout ledger.
const (
	TransferKindDisbursement = "disbursement"
	TransferKindExit         = "exit"
	TransferKindWithdrawal   = "withdrawal"
	TransferKindReward       = "reward"
)

// Transfer is a payout-ledger row for every outbound movement of funds.
type Transfer struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Kind        string          `json:"kind" db:"kind"`
	Destination string          `json:"destination" db:"destination"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Reference   string          `json:"reference" db:"reference"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Admin is a configured administrator; removal flips Active off.
type Admin struct {
	Address   string    `json:"address" db:"address"`
	Active    bool      `json:"active" db:"active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type ProposeWithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Destination string          `json:"destination" validate:"required"`
	Reason      string          `json:"reason" validate:"required"`
}

type DonateRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type TreasuryProposalResponse struct {
	Proposal *TreasuryProposal `json:"proposal"`
	Phase    string            `json:"phase"`
}

type TreasuryResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	TotalMembers  int64           `json:"total_members"`
	ActiveMembers int64           `json:"active_members"`
	AdminCount    int64           `json:"admin_count"`
	Paused        bool            `json:"paused"`
}
