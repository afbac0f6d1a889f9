package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

const payee = "0xfeed"

var withdrawAmount = decimal.NewFromInt(400_000)

func openWithdrawal(t *testing.T, f *fixture) *domain.TreasuryProposal {
	t.Helper()
	f.register(t, alice, bob, carol)
	proposal, err := f.dao.ProposeTreasuryWithdrawal(context.Background(), alice, withdrawAmount, payee, "infrastructure invoice")
	require.NoError(t, err)
	return proposal
}

func TestDonate(t *testing.T) {
	f := newFixture(t)

	// donations are accepted from non-members too
	require.NoError(t, f.dao.Donate(context.Background(), dave, decimal.NewFromInt(250_000)))
	assert.True(t, f.treasuryBalance().Equal(decimal.NewFromInt(250_000)))

	err := f.dao.Donate(context.Background(), dave, decimal.Zero)
	requireCode(t, err, customError.ErrCodeInvalidAmount)
}

func TestProposeTreasuryWithdrawal(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	assert.Equal(t, domain.ProposalStatusPending, proposal.Status)
	assert.Equal(t, domain.PhaseVoting, proposal.Phase(f.clock.Now()))
	assert.Equal(t, f.clock.Now().Add(VotingPeriod), proposal.VotingEndsAt)
}

func TestProposeTreasuryWithdrawal_Validation(t *testing.T) {
	f := newFixture(t)
	f.register(t, alice)

	_, err := f.dao.ProposeTreasuryWithdrawal(context.Background(), dave, withdrawAmount, payee, "x")
	requireCode(t, err, customError.ErrCodeNotMember)

	_, err = f.dao.ProposeTreasuryWithdrawal(context.Background(), alice, withdrawAmount, "", "x")
	requireCode(t, err, customError.ErrCodeZeroAddress)

	// treasury holds only one membership fee
	_, err = f.dao.ProposeTreasuryWithdrawal(context.Background(), alice, decimal.NewFromInt(2_000_000), payee, "x")
	requireCode(t, err, customError.ErrCodeInsufficientTreasury)
}

func TestVoteOnTreasuryProposal_ExecutesOnce(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	treasuryBefore := f.treasuryBalance()

	_, err := f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, true)
	require.NoError(t, err)
	assert.Empty(t, f.gateway.transfers)

	executed, err := f.dao.VoteOnTreasuryProposal(context.Background(), carol, proposal.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusExecuted, executed.Status)

	// destination credited exactly once, treasury debited exactly once
	require.Len(t, f.gateway.transfers, 1)
	assert.Equal(t, domain.TransferKindWithdrawal, f.gateway.transfers[0].kind)
	assert.Equal(t, payee, f.gateway.transfers[0].destination)
	assert.True(t, f.gateway.transfers[0].amount.Equal(withdrawAmount))
	assert.True(t, f.treasuryBalance().Equal(treasuryBefore.Sub(withdrawAmount)))

	// re-voting after execution fails
	f.register(t, dave)
	_, err = f.dao.VoteOnTreasuryProposal(context.Background(), dave, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeVotingClosed)
	require.Len(t, f.gateway.transfers, 1)
}

func TestVoteOnTreasuryProposal_Guards(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	_, err := f.dao.VoteOnTreasuryProposal(context.Background(), alice, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeSelfVote)

	_, err = f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, false)
	require.NoError(t, err)
	_, err = f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeAlreadyVoted)

	_, err = f.dao.VoteOnTreasuryProposal(context.Background(), dave, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeNotMember)
}

func TestVoteOnTreasuryProposal_Rejection(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	_, err := f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, false)
	require.NoError(t, err)
	rejected, err := f.dao.VoteOnTreasuryProposal(context.Background(), carol, proposal.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusRejected, rejected.Status)
	assert.Empty(t, f.gateway.transfers)
}

func TestVoteOnTreasuryProposal_TransferFailureRevertsAll(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	_, err := f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, true)
	require.NoError(t, err)

	treasuryBefore := f.treasuryBalance()
	f.gateway.onTransfer = func(kind, _ string, _ decimal.Decimal) error {
		return errors.New("destination rejected value")
	}

	_, err = f.dao.VoteOnTreasuryProposal(context.Background(), carol, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeTransferFailed)

	// all-or-nothing: not marked executed with funds stuck
	view, err := f.dao.GetTreasuryProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusPending, view.Proposal.Status)
	assert.False(t, view.Proposal.HasVoted(carol))
	assert.True(t, f.treasuryBalance().Equal(treasuryBefore))
}

func TestVoteOnTreasuryProposal_AfterWindow(t *testing.T) {
	f := newFixture(t)
	proposal := openWithdrawal(t, f)

	f.clock.Advance(VotingPeriod)
	_, err := f.dao.VoteOnTreasuryProposal(context.Background(), bob, proposal.ID, true)
	requireCode(t, err, customError.ErrCodeVotingClosed)
}
