package dao

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

var loanAmount = decimal.NewFromInt(500_000)

// threeMemberProposal registers alice, bob and carol and opens a loan
// proposal for alice. Flat 10% policy: total repayment is 550_000.
func threeMemberProposal(t *testing.T, f *fixture) *domain.LoanProposal {
	t.Helper()
	f.register(t, alice, bob, carol)
	proposal, err := f.dao.RequestLoan(context.Background(), alice, loanAmount)
	require.NoError(t, err)
	return proposal
}

func TestRequestLoan(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	assert.Equal(t, alice, proposal.Borrower)
	assert.Equal(t, domain.ProposalStatusPending, proposal.Status)
	assert.Equal(t, int64(1000), proposal.InterestRateBps)
	assert.True(t, proposal.TotalRepayment.Equal(decimal.NewFromInt(550_000)))
	assert.Equal(t, domain.PhaseEditing, proposal.Phase(f.clock.Now()))
	assert.Equal(t, f.clock.Now().Add(EditingPeriod), proposal.EditingEndsAt)
	assert.Equal(t, f.clock.Now().Add(EditingPeriod+VotingPeriod), proposal.VotingEndsAt)
}

func TestRequestLoan_NotMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.dao.RequestLoan(context.Background(), alice, loanAmount)
	requireCode(t, err, customError.ErrCodeNotMember)
}

func TestRequestLoan_MembershipTooYoung(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dao.SetMinMembershipDuration(context.Background(), adminAddr, 30*24*time.Hour))
	f.register(t, alice, bob, carol)

	_, err := f.dao.RequestLoan(context.Background(), alice, loanAmount)
	requireCode(t, err, customError.ErrCodeNotEligible)

	// eligible once the membership has aged past the minimum
	f.clock.Advance(31 * 24 * time.Hour)
	_, err = f.dao.RequestLoan(context.Background(), alice, loanAmount)
	require.NoError(t, err)
}

func TestRequestLoan_ExceedsTreasuryRatio(t *testing.T) {
	f := newFixture(t)
	f.register(t, alice, bob, carol)

	// policy caps at 50% of the 3_000_000 treasury
	_, err := f.dao.RequestLoan(context.Background(), alice, decimal.NewFromInt(1_500_001))
	requireCode(t, err, customError.ErrCodeInvalidAmount)
}

func TestEditLoanProposal(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	edited, err := f.dao.EditLoanProposal(context.Background(), alice, proposal.ID, decimal.NewFromInt(300_000))
	require.NoError(t, err)
	assert.True(t, edited.Amount.Equal(decimal.NewFromInt(300_000)))
	assert.True(t, edited.TotalRepayment.Equal(decimal.NewFromInt(330_000)))
}

func TestEditLoanProposal_NotOwner(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	_, err := f.dao.EditLoanProposal(context.Background(), bob, proposal.ID, decimal.NewFromInt(300_000))
	requireCode(t, err, customError.ErrCodeNotOwner)
}

func TestEditLoanProposal_AfterWindow(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	f.clock.Advance(EditingPeriod)
	_, err := f.dao.EditLoanProposal(context.Background(), alice, proposal.ID, decimal.NewFromInt(300_000))
	requireCode(t, err, customError.ErrCodeEditingPeriodOver)
}

func TestVoteOnLoanProposal_BeforeEditingEnds(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	_, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeEditingNotOver)
}

func TestVoteOnLoanProposal_SelfVote(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	f.clock.Advance(EditingPeriod)
	_, err := f.dao.VoteOnLoanProposal(context.Background(), alice, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeSelfVote)
}

func TestVoteOnLoanProposal_DoubleVote(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	f.clock.Advance(EditingPeriod)
	_, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, false)
	require.NoError(t, err)

	_, err = f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeAlreadyVoted)
}

func TestVoteOnLoanProposal_NonMember(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	f.clock.Advance(EditingPeriod)
	_, err := f.dao.VoteOnLoanProposal(context.Background(), dave, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeNotMember)
}

func TestVoteOnLoanProposal_ExecutesExactlyAtQuorum(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)
	f.clock.Advance(EditingPeriod)

	treasuryBefore := f.treasuryBalance()

	// 1 of 3 for: 33% < 51%, no execution
	afterFirst, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusPending, afterFirst.Status)
	assert.Empty(t, f.gateway.transfers)

	// 2 of 3 for: 66.7% >= 51%, executes on this exact vote
	afterSecond, err := f.dao.VoteOnLoanProposal(context.Background(), carol, proposal.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExecuted, afterSecond.Status)
	assert.Equal(t, domain.PhaseExecuted, afterSecond.Phase(f.clock.Now()))

	// principal disbursed to the borrower, treasury debited
	require.Len(t, f.gateway.transfers, 1)
	assert.Equal(t, domain.TransferKindDisbursement, f.gateway.transfers[0].kind)
	assert.Equal(t, alice, f.gateway.transfers[0].destination)
	assert.True(t, f.gateway.transfers[0].amount.Equal(loanAmount))
	assert.True(t, f.treasuryBalance().Equal(treasuryBefore.Sub(loanAmount)))

	// borrower flagged
	view, err := f.dao.GetMember(alice)
	require.NoError(t, err)
	assert.True(t, view.Member.HasActiveLoan)
	require.NotNil(t, view.Member.LastLoanAt)

	assert.Equal(t, 1, f.sink.typesSeen()[domain.EventLoanExecuted])
}

func TestVoteOnLoanProposal_RejectedWhenApprovalImpossible(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)
	f.clock.Advance(EditingPeriod)

	// required for-votes = ceil(0.51*3) = 2; after 2 against, at most 1
	// remaining voter could support, so approval is impossible
	afterFirst, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusPending, afterFirst.Status)

	afterSecond, err := f.dao.VoteOnLoanProposal(context.Background(), carol, proposal.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusRejected, afterSecond.Status)
	assert.Empty(t, f.gateway.transfers)

	// a rejected proposal is closed for voting
	f.register(t, dave)
	_, err = f.dao.VoteOnLoanProposal(context.Background(), dave, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeVotingClosed)
}

func TestVoteOnLoanProposal_AfterVotingWindow(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)

	f.clock.Advance(EditingPeriod + VotingPeriod)
	_, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeVotingClosed)

	// phase is derived as expired even before any sweep runs
	view, err := f.dao.GetLoanProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseExpired, view.Phase)
	assert.Equal(t, domain.ProposalStatusPending, view.Proposal.Status)
}

func TestSweepExpiredProposals(t *testing.T) {
	f := newFixture(t)
	proposal := threeMemberProposal(t, f)
	f.clock.Advance(EditingPeriod + VotingPeriod)

	_, err := f.dao.SweepExpiredProposals(context.Background(), bob)
	requireCode(t, err, customError.ErrCodeAccessDenied)

	swept, err := f.dao.SweepExpiredProposals(context.Background(), adminAddr)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	view, err := f.dao.GetLoanProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExpired, view.Proposal.Status)

	// idempotent
	swept, err = f.dao.SweepExpiredProposals(context.Background(), adminAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestRequestLoan_CooldownBetweenLoans(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dao.SetCooldownPeriod(context.Background(), adminAddr, 14*24*time.Hour))

	proposal := threeMemberProposal(t, f)
	f.clock.Advance(EditingPeriod)
	_, err := f.dao.VoteOnLoanProposal(context.Background(), bob, proposal.ID, true)
	require.NoError(t, err)
	_, err = f.dao.VoteOnLoanProposal(context.Background(), carol, proposal.ID, true)
	require.NoError(t, err)

	// settle the loan so only the cooldown blocks the next request
	view, err := f.dao.GetLoanProposal(proposal.ID)
	require.NoError(t, err)
	loanID := findLoanID(t, f, view.Proposal.ID)
	_, err = f.dao.RepayLoan(context.Background(), alice, loanID, decimal.NewFromInt(550_000))
	require.NoError(t, err)

	_, err = f.dao.RequestLoan(context.Background(), alice, loanAmount)
	requireCode(t, err, customError.ErrCodeNotEligible)

	f.clock.Advance(15 * 24 * time.Hour)
	_, err = f.dao.RequestLoan(context.Background(), alice, loanAmount)
	require.NoError(t, err)
}
