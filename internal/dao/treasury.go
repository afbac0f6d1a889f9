package dao

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
	"github.com/p2pdao/lending-dao/pkg/utils"
)

// Donate accepts an unsolicited contribution into the treasury. Donations
// issue no shares; any caller may donate.
func (d *DAO) Donate(ctx context.Context, caller string, amount decimal.Decimal) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}
		if !amount.IsPositive() || !utils.IsWholeAmount(amount) {
			return customError.WrapInvalidAmount("donation must be a positive whole number of base units")
		}

		treasury := t.treasuryState()
		treasury.Balance = treasury.Balance.Add(amount)
		treasury.UpdatedAt = t.now

		t.emit(domain.EventDonationReceived, caller, map[string]interface{}{
			"amount":  amount.String(),
			"balance": treasury.Balance.String(),
		})
		return nil
	})
}

// ProposeTreasuryWithdrawal opens a withdrawal proposal. Voting runs from
// creation; there is no editing window for treasury proposals.
func (d *DAO) ProposeTreasuryWithdrawal(ctx context.Context, caller string, amount decimal.Decimal, destination, reason string) (*domain.TreasuryProposal, error) {
	var out *domain.TreasuryProposal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		member, ok := t.member(caller)
		if !ok || member.Status != domain.MemberStatusActive {
			return customError.WrapNotMember(caller)
		}
		if destination == "" {
			return customError.WrapZeroAddress()
		}
		if !amount.IsPositive() || !utils.IsWholeAmount(amount) {
			return customError.WrapInvalidAmount("withdrawal must be a positive whole number of base units")
		}

		treasury := t.treasuryState()
		if amount.GreaterThan(treasury.Balance) {
			return customError.WrapInsufficientTreasury(amount.String(), treasury.Balance.String())
		}

		proposal := &domain.TreasuryProposal{
			ID:           uuid.New(),
			Proposer:     caller,
			Amount:       amount,
			Destination:  destination,
			Reason:       reason,
			Status:       domain.ProposalStatusPending,
			CreatedAt:    t.now,
			VotingEndsAt: t.now.Add(VotingPeriod),
			Voters:       make(map[string]bool),
		}
		t.stageTreasuryProposal(proposal)

		t.emit(domain.EventWithdrawalProposed, proposal.ID.String(), map[string]interface{}{
			"proposer":    caller,
			"amount":      amount.String(),
			"destination": destination,
			"reason":      reason,
		})

		out = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoteOnTreasuryProposal records a ballot with the same self-vote and
// double-vote protections as loan voting. Reaching the threshold debits
// the treasury and transfers the funds atomically with the vote.
func (d *DAO) VoteOnTreasuryProposal(ctx context.Context, caller string, id uuid.UUID, support bool) (*domain.TreasuryProposal, error) {
	var out *domain.TreasuryProposal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		proposal, ok := t.treasuryProposal(id)
		if !ok {
			return customError.WrapNotFound("Treasury proposal", id.String())
		}
		if proposal.Phase(t.now) != domain.PhaseVoting {
			return customError.WrapVotingClosed(id.String())
		}
		if proposal.Proposer == caller {
			return customError.WrapSelfVote(id.String())
		}
		member, ok := t.member(caller)
		if !ok || member.Status != domain.MemberStatusActive {
			return customError.WrapNotMember(caller)
		}
		if proposal.HasVoted(caller) {
			return customError.WrapAlreadyVoted(id.String())
		}

		proposal.Voters[caller] = true
		if support {
			proposal.ForVotes++
		} else {
			proposal.AgainstVotes++
		}
		t.recordTreasuryVote(&domain.Vote{
			ProposalID: id,
			Voter:      caller,
			Support:    support,
			CreatedAt:  t.now,
		})

		t.emit(domain.EventTreasuryVoteCast, id.String(), map[string]interface{}{
			"voter":         caller,
			"support":       support,
			"for_votes":     proposal.ForVotes,
			"against_votes": proposal.AgainstVotes,
		})

		active := t.activeMembers()
		threshold := t.loanPolicy().ConsensusThresholdBps

		if utils.MeetsThreshold(proposal.ForVotes, active, threshold) {
			treasury := t.treasuryState()
			if treasury.Balance.LessThan(proposal.Amount) {
				return customError.WrapInsufficientTreasury(proposal.Amount.String(), treasury.Balance.String())
			}

			proposal.Status = domain.ProposalStatusExecuted
			treasury.Balance = treasury.Balance.Sub(proposal.Amount)
			treasury.UpdatedAt = t.now

			t.transfer(domain.TransferKindWithdrawal, proposal.Destination, proposal.Amount, id.String())

			t.emit(domain.EventWithdrawalExecuted, id.String(), map[string]interface{}{
				"destination": proposal.Destination,
				"amount":      proposal.Amount.String(),
			})
		} else if active-proposal.AgainstVotes < utils.RequiredVotes(active, threshold) {
			proposal.Status = domain.ProposalStatusRejected
			t.emit(domain.EventWithdrawalRejected, id.String(), map[string]interface{}{
				"for_votes":     proposal.ForVotes,
				"against_votes": proposal.AgainstVotes,
			})
		}
		t.stageTreasuryProposal(proposal)

		out = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateExitShare returns the tracked pro-rata claim for a member.
func (d *DAO) CalculateExitShare(address string) (decimal.Decimal, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	member, ok := d.members[address]
	if !ok {
		return decimal.Zero, customError.WrapNotFound("Member", address)
	}
	return member.ShareBalance, nil
}
