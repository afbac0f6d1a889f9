package dao

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

func scaledPolicy() *domain.LoanPolicy {
	p := testPolicy()
	p.MinInterestRateBps = 500
	p.MaxInterestRateBps = 2000
	p.MaxLoanRatioBps = 10000
	return p
}

func TestCalculateLoanTerms_ScalesWithUtilization(t *testing.T) {
	policy := scaledPolicy()
	balance := decimal.NewFromInt(1_000_000)

	tests := []struct {
		name        string
		amount      int64
		expectedBps int64
	}{
		{name: "tiny utilization stays at minimum", amount: 100, expectedBps: 500},
		{name: "quarter utilization", amount: 250_000, expectedBps: 875},
		{name: "half utilization", amount: 500_000, expectedBps: 1250},
		{name: "full utilization hits maximum", amount: 1_000_000, expectedBps: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := calculateLoanTerms(decimal.NewFromInt(tt.amount), balance, policy)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedBps, terms.InterestRateBps)
			assert.Equal(t, policy.MaxLoanDurationDays, terms.DurationDays)

			interest := decimal.NewFromInt(tt.amount * tt.expectedBps / 10000)
			assert.True(t, terms.TotalRepayment.Equal(decimal.NewFromInt(tt.amount).Add(interest)),
				"total repayment %s", terms.TotalRepayment)
		})
	}
}

func TestCalculateLoanTerms_MonotonicAndClamped(t *testing.T) {
	policy := scaledPolicy()
	balance := decimal.NewFromInt(1_000_000)

	prev := int64(-1)
	for amount := int64(10_000); amount <= 1_000_000; amount += 10_000 {
		terms, err := calculateLoanTerms(decimal.NewFromInt(amount), balance, policy)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, terms.InterestRateBps, policy.MinInterestRateBps)
		assert.LessOrEqual(t, terms.InterestRateBps, policy.MaxInterestRateBps)
		assert.GreaterOrEqual(t, terms.InterestRateBps, prev, "rate must not decrease with utilization")
		prev = terms.InterestRateBps
	}
}

func TestCalculateLoanTerms_Validation(t *testing.T) {
	policy := testPolicy()
	balance := decimal.NewFromInt(1_000_000)

	_, err := calculateLoanTerms(decimal.Zero, balance, policy)
	requireCode(t, err, customError.ErrCodeInvalidAmount)

	_, err = calculateLoanTerms(decimal.NewFromFloat(10.5), balance, policy)
	requireCode(t, err, customError.ErrCodeInvalidAmount)

	// policy caps loans at 50% of treasury
	_, err = calculateLoanTerms(decimal.NewFromInt(500_001), balance, policy)
	requireCode(t, err, customError.ErrCodeInvalidAmount)

	_, err = calculateLoanTerms(decimal.NewFromInt(100), decimal.Zero, policy)
	requireCode(t, err, customError.ErrCodeInsufficientTreasury)
}
