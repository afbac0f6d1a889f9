package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyBasisPoints(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		bps      int64
		expected int64
	}{
		{name: "10 percent of 1000", amount: 1000, bps: 1000, expected: 100},
		{name: "5 percent of 500", amount: 500, bps: 500, expected: 25},
		{name: "truncates fractional units", amount: 333, bps: 100, expected: 3},
		{name: "zero rate", amount: 1000, bps: 0, expected: 0},
		{name: "full rate", amount: 1000, bps: 10000, expected: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyBasisPoints(decimal.NewFromInt(tt.amount), tt.bps)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.expected)), "got %s", got)
		})
	}
}

func TestMeetsThreshold(t *testing.T) {
	// 2 of 3 voters at 51%
	assert.True(t, MeetsThreshold(2, 3, 5100))
	// 1 of 3 voters at 51%
	assert.False(t, MeetsThreshold(1, 3, 5100))
	// exact boundary: 51 of 100 at 51%
	assert.True(t, MeetsThreshold(51, 100, 5100))
	assert.False(t, MeetsThreshold(50, 100, 5100))
	// no members
	assert.False(t, MeetsThreshold(0, 0, 5100))
}

func TestRequiredVotes(t *testing.T) {
	assert.Equal(t, int64(2), RequiredVotes(3, 5100))
	assert.Equal(t, int64(51), RequiredVotes(100, 5100))
	assert.Equal(t, int64(1), RequiredVotes(1, 5100))
	assert.Equal(t, int64(10), RequiredVotes(10, 10000))
	assert.Equal(t, int64(0), RequiredVotes(0, 5100))
}

func TestSplitEqually(t *testing.T) {
	share, remainder := SplitEqually(decimal.NewFromInt(50), 3)
	assert.True(t, share.Equal(decimal.NewFromInt(16)))
	assert.True(t, remainder.Equal(decimal.NewFromInt(2)))

	// no value created or destroyed
	total := share.Mul(decimal.NewFromInt(3)).Add(remainder)
	assert.True(t, total.Equal(decimal.NewFromInt(50)))

	share, remainder = SplitEqually(decimal.NewFromInt(90), 3)
	assert.True(t, share.Equal(decimal.NewFromInt(30)))
	assert.True(t, remainder.IsZero())

	share, remainder = SplitEqually(decimal.NewFromInt(7), 0)
	assert.True(t, share.IsZero())
	assert.True(t, remainder.Equal(decimal.NewFromInt(7)))
}

func TestIsWholeAmount(t *testing.T) {
	assert.True(t, IsWholeAmount(decimal.NewFromInt(100)))
	assert.True(t, IsWholeAmount(decimal.Zero))
	assert.False(t, IsWholeAmount(decimal.NewFromFloat(0.5)))
	assert.False(t, IsWholeAmount(decimal.NewFromInt(-1)))
}

func TestClampBps(t *testing.T) {
	assert.Equal(t, int64(500), ClampBps(300, 500, 2000))
	assert.Equal(t, int64(2000), ClampBps(2500, 500, 2000))
	assert.Equal(t, int64(1000), ClampBps(1000, 500, 2000))
}
