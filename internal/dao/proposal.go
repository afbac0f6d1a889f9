package dao

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
	"github.com/p2pdao/lending-dao/pkg/utils"
)

// RequestLoan opens a loan proposal in its editing window. Terms are
// computed against the current treasury balance and recomputed on edits.
func (d *DAO) RequestLoan(ctx context.Context, caller string, amount decimal.Decimal) (*domain.LoanProposal, error) {
	var out *domain.LoanProposal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		member, ok := t.member(caller)
		if !ok {
			return customError.WrapNotMember(caller)
		}
		if eligible, reason := t.isEligibleForLoan(member); !eligible {
			return customError.WrapNotEligible(caller, reason)
		}

		terms, err := calculateLoanTerms(amount, t.treasuryState().Balance, t.loanPolicy())
		if err != nil {
			return err
		}

		editingEnds := t.now.Add(EditingPeriod)
		proposal := &domain.LoanProposal{
			ID:              uuid.New(),
			Borrower:        caller,
			Amount:          terms.Amount,
			InterestRateBps: terms.InterestRateBps,
			DurationDays:    terms.DurationDays,
			TotalRepayment:  terms.TotalRepayment,
			Status:          domain.ProposalStatusPending,
			CreatedAt:       t.now,
			EditingEndsAt:   editingEnds,
			VotingEndsAt:    editingEnds.Add(VotingPeriod),
			Voters:          make(map[string]bool),
		}
		t.stageLoanProposal(proposal)

		t.emit(domain.EventLoanProposalCreated, proposal.ID.String(), map[string]interface{}{
			"borrower":          caller,
			"amount":            proposal.Amount.String(),
			"interest_rate_bps": proposal.InterestRateBps,
			"total_repayment":   proposal.TotalRepayment.String(),
			"editing_ends_at":   proposal.EditingEndsAt,
		})

		out = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EditLoanProposal lets the borrower revise the amount while the editing
// window is open. Terms are recomputed and overwritten in place.
func (d *DAO) EditLoanProposal(ctx context.Context, caller string, id uuid.UUID, amount decimal.Decimal) (*domain.LoanProposal, error) {
	var out *domain.LoanProposal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		proposal, ok := t.loanProposal(id)
		if !ok {
			return customError.WrapNotFound("Loan proposal", id.String())
		}
		if proposal.Borrower != caller {
			return customError.WrapNotOwner(id.String())
		}
		if proposal.Phase(t.now) != domain.PhaseEditing {
			return customError.WrapEditingPeriodOver(id.String())
		}

		terms, err := calculateLoanTerms(amount, t.treasuryState().Balance, t.loanPolicy())
		if err != nil {
			return err
		}

		proposal.Amount = terms.Amount
		proposal.InterestRateBps = terms.InterestRateBps
		proposal.DurationDays = terms.DurationDays
		proposal.TotalRepayment = terms.TotalRepayment
		t.stageLoanProposal(proposal)

		t.emit(domain.EventLoanProposalEdited, id.String(), map[string]interface{}{
			"amount":            proposal.Amount.String(),
			"interest_rate_bps": proposal.InterestRateBps,
			"total_repayment":   proposal.TotalRepayment.String(),
		})

		out = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoteOnLoanProposal records one member's ballot once the editing window
// has closed. The proposal executes on the exact vote that reaches the
// consensus threshold, and is rejected the moment approval becomes
// mathematically impossible.
func (d *DAO) VoteOnLoanProposal(ctx context.Context, caller string, id uuid.UUID, support bool) (*domain.LoanProposal, error) {
	var out *domain.LoanProposal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		proposal, ok := t.loanProposal(id)
		if !ok {
			return customError.WrapNotFound("Loan proposal", id.String())
		}

		switch proposal.Phase(t.now) {
		case domain.PhaseEditing:
			return customError.WrapEditingNotOver(id.String())
		case domain.PhaseVoting:
			// open
		default:
			return customError.WrapVotingClosed(id.String())
		}

		if proposal.Borrower == caller {
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
		t.recordLoanVote(&domain.Vote{
			ProposalID: id,
			Voter:      caller,
			Support:    support,
			CreatedAt:  t.now,
		})

		t.emit(domain.EventLoanVoteCast, id.String(), map[string]interface{}{
			"voter":         caller,
			"support":       support,
			"for_votes":     proposal.ForVotes,
			"against_votes": proposal.AgainstVotes,
		})

		active := t.activeMembers()
		threshold := t.loanPolicy().ConsensusThresholdBps

		if utils.MeetsThreshold(proposal.ForVotes, active, threshold) {
			if err := t.executeLoanProposal(proposal); err != nil {
				return err
			}
		} else if active-proposal.AgainstVotes < utils.RequiredVotes(active, threshold) {
			// Approval is impossible regardless of remaining votes.
			proposal.Status = domain.ProposalStatusRejected
			t.emit(domain.EventLoanProposalRejected, id.String(), map[string]interface{}{
				"for_votes":     proposal.ForVotes,
				"against_votes": proposal.AgainstVotes,
			})
		}
		t.stageLoanProposal(proposal)

		out = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// executeLoanProposal approves the proposal, opens the loan and disburses
// the principal. Runs inside the voting call that reached quorum.
func (t *txn) executeLoanProposal(proposal *domain.LoanProposal) error {
	treasury := t.treasuryState()
	if treasury.Balance.LessThan(proposal.Amount) {
		return customError.WrapInsufficientTreasury(proposal.Amount.String(), treasury.Balance.String())
	}

	borrower, ok := t.member(proposal.Borrower)
	if !ok || borrower.Status != domain.MemberStatusActive {
		return customError.WrapNotMember(proposal.Borrower)
	}
	if borrower.HasActiveLoan {
		return customError.WrapHasActiveLoan(proposal.Borrower)
	}

	proposal.Status = domain.ProposalStatusExecuted

	loan := &domain.Loan{
		ID:              uuid.New(),
		ProposalID:      proposal.ID,
		Borrower:        proposal.Borrower,
		Principal:       proposal.Amount,
		InterestRateBps: proposal.InterestRateBps,
		TotalRepayment:  proposal.TotalRepayment,
		AmountRepaid:    decimal.Zero,
		Status:          domain.LoanStatusActive,
		StartedAt:       t.now,
		DueAt:           t.now.AddDate(0, 0, proposal.DurationDays),
	}
	t.stageLoan(loan)

	lastLoan := t.now
	borrower.HasActiveLoan = true
	borrower.LastLoanAt = &lastLoan
	t.stageMember(borrower)

	treasury.Balance = treasury.Balance.Sub(proposal.Amount)
	treasury.UpdatedAt = t.now

	t.transfer(domain.TransferKindDisbursement, proposal.Borrower, proposal.Amount, loan.ID.String())

	t.emit(domain.EventLoanExecuted, loan.ID.String(), map[string]interface{}{
		"proposal_id":     proposal.ID.String(),
		"borrower":        proposal.Borrower,
		"principal":       loan.Principal.String(),
		"total_repayment": loan.TotalRepayment.String(),
		"due_at":          loan.DueAt,
	})
	return nil
}

// SweepExpiredProposals durably marks every pending proposal whose voting
// window has passed as expired. Phase derivation already reports these as
// expired; the sweep makes it visible to indexers and storage.
func (d *DAO) SweepExpiredProposals(ctx context.Context, caller string) (int, error) {
	var swept int
	err := d.mutate(ctx, func(t *txn) error {
		if !t.isAdmin(caller) {
			return customError.WrapNotAdmin(caller)
		}

		d.stateMu.RLock()
		var loanIDs, treasuryIDs []uuid.UUID
		for id, p := range d.loanProposals {
			if p.Status == domain.ProposalStatusPending && !t.now.Before(p.VotingEndsAt) {
				loanIDs = append(loanIDs, id)
			}
		}
		for id, p := range d.treasuryProposals {
			if p.Status == domain.ProposalStatusPending && !t.now.Before(p.VotingEndsAt) {
				treasuryIDs = append(treasuryIDs, id)
			}
		}
		d.stateMu.RUnlock()

		for _, id := range loanIDs {
			proposal, _ := t.loanProposal(id)
			proposal.Status = domain.ProposalStatusExpired
			t.stageLoanProposal(proposal)
			t.emit(domain.EventLoanProposalExpired, id.String(), nil)
			swept++
		}
		for _, id := range treasuryIDs {
			proposal, _ := t.treasuryProposal(id)
			proposal.Status = domain.ProposalStatusExpired
			t.stageTreasuryProposal(proposal)
			t.emit(domain.EventWithdrawalExpired, id.String(), nil)
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}
