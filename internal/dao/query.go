package dao

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

// Read-only queries. Views stay available while paused.

// GetMember returns the member view with the derived eligibility flag.
func (d *DAO) GetMember(address string) (*domain.MemberResponse, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	member, ok := d.members[address]
	if !ok {
		return nil, customError.WrapNotFound("Member", address)
	}

	eligible, _ := eligibleForLoan(member, d.policy, d.now())

	return &domain.MemberResponse{
		Member:         member.Clone(),
		ExitShare:      member.ShareBalance,
		EligibleToLoan: eligible,
	}, nil
}

// GetLoanProposal returns the proposal with its derived phase.
func (d *DAO) GetLoanProposal(id uuid.UUID) (*domain.LoanProposalResponse, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	proposal, ok := d.loanProposals[id]
	if !ok {
		return nil, customError.WrapNotFound("Loan proposal", id.String())
	}
	return &domain.LoanProposalResponse{
		Proposal: proposal.Clone(),
		Phase:    proposal.Phase(d.now()),
	}, nil
}

// GetLoan returns a loan by id.
func (d *DAO) GetLoan(id uuid.UUID) (*domain.Loan, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	loan, ok := d.loans[id]
	if !ok {
		return nil, customError.WrapNotFound("Loan", id.String())
	}
	return loan.Clone(), nil
}

// LoanForProposal returns the loan opened by an executed proposal.
func (d *DAO) LoanForProposal(proposalID uuid.UUID) (*domain.Loan, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	for _, loan := range d.loans {
		if loan.ProposalID == proposalID {
			return loan.Clone(), nil
		}
	}
	return nil, customError.WrapNotFound("Loan for proposal", proposalID.String())
}

// GetTreasuryProposal returns the withdrawal proposal with its phase.
func (d *DAO) GetTreasuryProposal(id uuid.UUID) (*domain.TreasuryProposalResponse, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	proposal, ok := d.treasuryProposals[id]
	if !ok {
		return nil, customError.WrapNotFound("Treasury proposal", id.String())
	}
	return &domain.TreasuryProposalResponse{
		Proposal: proposal.Clone(),
		Phase:    proposal.Phase(d.now()),
	}, nil
}

// Treasury returns the pooled balance and membership counters.
func (d *DAO) Treasury() *domain.TreasuryResponse {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()

	var total, active int64
	for _, m := range d.members {
		total++
		if m.Status == domain.MemberStatusActive {
			active++
		}
	}
	return &domain.TreasuryResponse{
		Balance:       d.treasury.Balance,
		TotalMembers:  total,
		ActiveMembers: active,
		AdminCount:    int64(len(d.admins)),
		Paused:        d.treasury.Paused,
	}
}

// Policy returns the current loan policy.
func (d *DAO) Policy() *domain.LoanPolicy {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.policy.Clone()
}

// PreviewLoanTerms computes the terms a loan of the given amount would
// carry against the current treasury balance, without mutating anything.
func (d *DAO) PreviewLoanTerms(amount decimal.Decimal) (*domain.LoanTerms, error) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return calculateLoanTerms(amount, d.treasury.Balance, d.policy)
}

// IsAdmin reports whether the address is in the admin set.
func (d *DAO) IsAdmin(address string) bool {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.admins[address]
}
