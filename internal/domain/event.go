package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted on every state transition, for off-chain indexing.
const (
	EventMemberRegistered    = "member.registered"
	EventMemberExited        = "member.exited"
	EventLoanProposalCreated = "loan_proposal.created"
	EventLoanProposalEdited  = "loan_proposal.edited"
	EventLoanVoteCast        = "loan_proposal.vote_cast"
	EventLoanProposalRejected = "loan_proposal.rejected"
	EventLoanProposalExpired = "loan_proposal.expired"
	EventLoanExecuted        = "loan.executed"
	EventLoanRepayment       = "loan.repayment"
	EventLoanRepaid          = "loan.repaid"
	EventInterestDistributed = "loan.interest_distributed"
	EventRewardsClaimed      = "rewards.claimed"
	EventDonationReceived    = "treasury.donation"
	EventWithdrawalProposed  = "treasury_proposal.created"
	EventTreasuryVoteCast    = "treasury_proposal.vote_cast"
	EventWithdrawalExecuted  = "treasury_proposal.executed"
	EventWithdrawalRejected  = "treasury_proposal.rejected"
	EventWithdrawalExpired   = "treasury_proposal.expired"
	EventInitialized         = "dao.initialized"
	EventAdminAdded          = "admin.added"
	EventAdminRemoved        = "admin.removed"
	EventPolicyChanged       = "policy.changed"
	EventPaused              = "dao.paused"
	EventUnpaused            = "dao.unpaused"
)

// Event carries the entity id and the relevant new values of a transition.
// No core logic depends on events being observed.
type Event struct {
	ID        uuid.UUID              `json:"id" db:"id"`
	Type      string                 `json:"type" db:"type"`
	EntityID  string                 `json:"entity_id" db:"entity_id"`
	Payload   map[string]interface{} `json:"payload" db:"-"`
	EmittedAt time.Time              `json:"emitted_at" db:"emitted_at"`
}

func NewEvent(eventType, entityID string, payload map[string]interface{}, at time.Time) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		EntityID:  entityID,
		Payload:   payload,
		EmittedAt: at,
	}
}
