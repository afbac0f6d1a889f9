package dao

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

func TestInitialize_Once(t *testing.T) {
	f := newFixture(t)

	err := f.dao.Initialize(context.Background(), []string{adminAddr}, 5100, testFee)
	requireCode(t, err, customError.ErrCodeAlreadyInitialized)
}

func TestInitialize_Validation(t *testing.T) {
	store := &stubStore{}
	d := New(store, &stubGateway{}, &stubSink{}, testPolicy())

	err := d.Initialize(context.Background(), nil, 5100, testFee)
	requireCode(t, err, customError.ErrCodeInvalidPolicy)

	err = d.Initialize(context.Background(), []string{adminAddr}, 0, testFee)
	requireCode(t, err, customError.ErrCodeInvalidPolicy)

	err = d.Initialize(context.Background(), []string{adminAddr}, 10001, testFee)
	requireCode(t, err, customError.ErrCodeInvalidPolicy)

	err = d.Initialize(context.Background(), []string{adminAddr}, 5100, decimal.Zero)
	requireCode(t, err, customError.ErrCodeInvalidPolicy)
}

func TestPolicySetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantErr string
	}{
		{name: "threshold ok", call: func() error { return f.dao.SetConsensusThreshold(ctx, adminAddr, 6000) }},
		{name: "threshold too high", call: func() error { return f.dao.SetConsensusThreshold(ctx, adminAddr, 10001) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "threshold zero", call: func() error { return f.dao.SetConsensusThreshold(ctx, adminAddr, 0) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "fee ok", call: func() error { return f.dao.SetMembershipContribution(ctx, adminAddr, decimal.NewFromInt(2_000_000)) }},
		{name: "fee fractional", call: func() error { return f.dao.SetMembershipContribution(ctx, adminAddr, decimal.NewFromFloat(1.5)) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "min duration ok", call: func() error { return f.dao.SetMinMembershipDuration(ctx, adminAddr, 24*time.Hour) }},
		{name: "min duration negative", call: func() error { return f.dao.SetMinMembershipDuration(ctx, adminAddr, -time.Hour) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "loan duration ok", call: func() error { return f.dao.SetMaxLoanDuration(ctx, adminAddr, 60) }},
		{name: "loan duration zero", call: func() error { return f.dao.SetMaxLoanDuration(ctx, adminAddr, 0) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "rate range ok", call: func() error { return f.dao.SetInterestRateRange(ctx, adminAddr, 200, 1500) }},
		{name: "rate range inverted", call: func() error { return f.dao.SetInterestRateRange(ctx, adminAddr, 1500, 200) }, wantErr: customError.ErrCodeInvalidPolicy},
		{name: "cooldown ok", call: func() error { return f.dao.SetCooldownPeriod(ctx, adminAddr, 7*24*time.Hour) }},
		{name: "ratio ok", call: func() error { return f.dao.SetMaxLoanRatio(ctx, adminAddr, 3000) }},
		{name: "ratio too high", call: func() error { return f.dao.SetMaxLoanRatio(ctx, adminAddr, 10001) }, wantErr: customError.ErrCodeInvalidPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				requireCode(t, err, tt.wantErr)
			}
		})
	}

	policy := f.dao.Policy()
	assert.Equal(t, int64(6000), policy.ConsensusThresholdBps)
	assert.Equal(t, int64(200), policy.MinInterestRateBps)
	assert.Equal(t, int64(1500), policy.MaxInterestRateBps)
	assert.Equal(t, 60, policy.MaxLoanDurationDays)
	assert.Equal(t, int64(3000), policy.MaxLoanRatioBps)
}

func TestPolicySetters_NonAdmin(t *testing.T) {
	f := newFixture(t)
	f.register(t, alice)

	err := f.dao.SetConsensusThreshold(context.Background(), alice, 6000)
	requireCode(t, err, customError.ErrCodeAccessDenied)
}

func TestAddRemoveAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.dao.AddAdmin(ctx, alice, bob)
	requireCode(t, err, customError.ErrCodeAccessDenied)

	require.NoError(t, f.dao.AddAdmin(ctx, adminAddr, bob))
	assert.True(t, f.dao.IsAdmin(bob))

	// the new admin can act
	require.NoError(t, f.dao.SetConsensusThreshold(ctx, bob, 6000))

	require.NoError(t, f.dao.RemoveAdmin(ctx, adminAddr, bob))
	assert.False(t, f.dao.IsAdmin(bob))

	err = f.dao.RemoveAdmin(ctx, adminAddr, bob)
	requireCode(t, err, customError.ErrCodeNotFound)
}

func TestPauseBlocksMutations(t *testing.T) {
	f := newFixture(t)
	f.register(t, alice, bob, carol)
	ctx := context.Background()

	err := f.dao.Pause(ctx, alice)
	requireCode(t, err, customError.ErrCodeAccessDenied)

	require.NoError(t, f.dao.Pause(ctx, adminAddr))

	_, err = f.dao.RegisterMember(ctx, dave, testFee)
	requireCode(t, err, customError.ErrCodePaused)
	_, err = f.dao.RequestLoan(ctx, alice, loanAmount)
	requireCode(t, err, customError.ErrCodePaused)
	_, err = f.dao.ExitDAO(ctx, alice)
	requireCode(t, err, customError.ErrCodePaused)
	err = f.dao.Donate(ctx, dave, decimal.NewFromInt(100))
	requireCode(t, err, customError.ErrCodePaused)

	// views remain available
	assert.True(t, f.dao.Treasury().Paused)
	_, err = f.dao.GetMember(alice)
	assert.NoError(t, err)

	require.NoError(t, f.dao.Unpause(ctx, adminAddr))
	_, err = f.dao.RegisterMember(ctx, dave, testFee)
	assert.NoError(t, err)
}

func TestReentrantGatewayCallRejected(t *testing.T) {
	f := newFixture(t)
	f.register(t, alice, bob)

	// a gateway that re-enters the DAO during an exit payout must be
	// rejected by the guard and fail the whole call
	var nested error
	f.gateway.onTransfer = func(_, _ string, _ decimal.Decimal) error {
		nested = f.dao.Donate(context.Background(), dave, decimal.NewFromInt(1))
		return nested
	}

	_, err := f.dao.ExitDAO(context.Background(), alice)
	requireCode(t, err, customError.ErrCodeTransferFailed)
	requireCode(t, nested, customError.ErrCodeReentrancy)

	// exit was fully reverted
	view, err := f.dao.GetMember(alice)
	require.NoError(t, err)
	assert.Equal(t, "active", view.Member.Status)
	assert.True(t, view.Member.ShareBalance.Equal(testFee))
}
