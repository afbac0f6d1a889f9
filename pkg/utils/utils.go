package utils

import (
	"github.com/shopspring/decimal"
)

// BasisPointDenominator is the scale for rates and thresholds (10000 = 100%).
const BasisPointDenominator = 10000

var bpsDenominator = decimal.NewFromInt(BasisPointDenominator)

// ApplyBasisPoints returns amount * bps / 10000, truncated to integer base units.
func ApplyBasisPoints(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(bps)).Div(bpsDenominator).Floor()
}

// MeetsThreshold reports whether count/total reaches the threshold in basis points.
// Evaluated as count * 10000 >= threshold * total to avoid division.
func MeetsThreshold(count, total int64, thresholdBps int64) bool {
	if total <= 0 {
		return false
	}
	return count*BasisPointDenominator >= thresholdBps*total
}

// RequiredVotes returns the minimum "for" votes to reach the threshold:
// ceil(thresholdBps * total / 10000).
func RequiredVotes(total int64, thresholdBps int64) int64 {
	if total <= 0 {
		return 0
	}
	return (thresholdBps*total + BasisPointDenominator - 1) / BasisPointDenominator
}

// ClampBps clamps a basis-point value into [min, max].
func ClampBps(v, min, max int64) int64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// IsWholeAmount reports whether d is a non-negative integer number of base units.
func IsWholeAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Floor())
}

// SplitEqually divides total across n recipients in whole base units.
// Returns the per-recipient share and the remainder left over.
func SplitEqually(total decimal.Decimal, n int64) (share, remainder decimal.Decimal) {
	if n <= 0 {
		return decimal.Zero, total
	}
	nDec := decimal.NewFromInt(n)
	share = total.Div(nDec).Floor()
	remainder = total.Sub(share.Mul(nDec))
	return share, remainder
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
