package dao

import (
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
	"github.com/p2pdao/lending-dao/pkg/utils"
)

// calculateLoanTerms derives the interest rate from treasury utilization:
// the rate scales linearly from the policy minimum to the maximum as
// amount/treasuryBalance grows, clamped to the configured range. Duration
// is the policy maximum, fixed.
func calculateLoanTerms(amount, treasuryBalance decimal.Decimal, policy *domain.LoanPolicy) (*domain.LoanTerms, error) {
	if !amount.IsPositive() || !utils.IsWholeAmount(amount) {
		return nil, customError.WrapInvalidAmount("loan amount must be a positive whole number of base units")
	}
	if !treasuryBalance.IsPositive() {
		return nil, customError.WrapInsufficientTreasury(amount.String(), treasuryBalance.String())
	}

	maxLoan := utils.ApplyBasisPoints(treasuryBalance, policy.MaxLoanRatioBps)
	if amount.GreaterThan(maxLoan) {
		return nil, customError.WrapInvalidAmount(
			"loan amount " + amount.String() + " exceeds the maximum of " + maxLoan.String() +
				" allowed against the current treasury")
	}

	rateRange := decimal.NewFromInt(policy.MaxInterestRateBps - policy.MinInterestRateBps)
	scaled := rateRange.Mul(amount).Div(treasuryBalance).Floor()
	rate := utils.ClampBps(policy.MinInterestRateBps+scaled.IntPart(),
		policy.MinInterestRateBps, policy.MaxInterestRateBps)

	interest := utils.ApplyBasisPoints(amount, rate)

	return &domain.LoanTerms{
		Amount:          amount,
		InterestRateBps: rate,
		DurationDays:    policy.MaxLoanDurationDays,
		TotalRepayment:  amount.Add(interest),
	}, nil
}
