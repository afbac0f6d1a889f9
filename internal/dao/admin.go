package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
	"github.com/p2pdao/lending-dao/pkg/utils"
)

// Initialize performs the one-time bootstrap: seeds the admin set, the
// consensus threshold and the membership fee. Fails on a second call.
func (d *DAO) Initialize(ctx context.Context, admins []string, thresholdBps int64, membershipFee decimal.Decimal) error {
	return d.mutate(ctx, func(t *txn) error {
		treasury := t.treasuryState()
		if treasury.Initialized {
			return customError.WrapAlreadyInitialized()
		}
		if len(admins) == 0 {
			return customError.WrapInvalidPolicy("at least one admin is required")
		}
		if thresholdBps < 1 || thresholdBps > utils.BasisPointDenominator {
			return customError.WrapInvalidPolicy("consensus threshold must be between 1 and 10000 basis points")
		}
		if !membershipFee.IsPositive() || !utils.IsWholeAmount(membershipFee) {
			return customError.WrapInvalidPolicy("membership fee must be a positive whole number of base units")
		}

		for _, admin := range admins {
			if admin == "" {
				return customError.WrapZeroAddress()
			}
			t.stageAdmin(admin, true)
		}

		policy := t.loanPolicy()
		policy.ConsensusThresholdBps = thresholdBps
		policy.MembershipFee = membershipFee
		policy.UpdatedAt = t.now

		treasury.Initialized = true
		treasury.UpdatedAt = t.now

		t.emit(domain.EventInitialized, "dao", map[string]interface{}{
			"admins":         admins,
			"threshold_bps":  thresholdBps,
			"membership_fee": membershipFee.String(),
		})
		return nil
	})
}

func (t *txn) requireAdmin(caller string) error {
	if !t.treasuryState().Initialized {
		return customError.WrapNotInitialized()
	}
	if !t.isAdmin(caller) {
		return customError.WrapNotAdmin(caller)
	}
	return nil
}

// AddAdmin adds an address to the admin set; restricted to admins.
func (d *DAO) AddAdmin(ctx context.Context, caller, address string) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireAdmin(caller); err != nil {
			return err
		}
		if address == "" {
			return customError.WrapZeroAddress()
		}
		t.stageAdmin(address, true)
		t.emit(domain.EventAdminAdded, address, nil)
		return nil
	})
}

// RemoveAdmin removes an address from the admin set; restricted to admins.
func (d *DAO) RemoveAdmin(ctx context.Context, caller, address string) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireAdmin(caller); err != nil {
			return err
		}
		if !t.isAdmin(address) {
			return customError.WrapNotFound("Admin", address)
		}
		t.stageAdmin(address, false)
		t.emit(domain.EventAdminRemoved, address, nil)
		return nil
	})
}

// setPolicy wraps the shared admin-gate + emit for every policy setter.
func (d *DAO) setPolicy(ctx context.Context, caller, field string, apply func(p *domain.LoanPolicy) error) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireAdmin(caller); err != nil {
			return err
		}
		policy := t.loanPolicy()
		if err := apply(policy); err != nil {
			return err
		}
		policy.UpdatedAt = t.now
		t.emit(domain.EventPolicyChanged, field, map[string]interface{}{
			"field": field,
		})
		return nil
	})
}

// SetConsensusThreshold updates the approval threshold in basis points.
func (d *DAO) SetConsensusThreshold(ctx context.Context, caller string, bps int64) error {
	return d.setPolicy(ctx, caller, "consensus_threshold", func(p *domain.LoanPolicy) error {
		if bps < 1 || bps > utils.BasisPointDenominator {
			return customError.WrapInvalidPolicy("consensus threshold must be between 1 and 10000 basis points")
		}
		p.ConsensusThresholdBps = bps
		return nil
	})
}

// SetMembershipContribution updates the fee new members must pay.
func (d *DAO) SetMembershipContribution(ctx context.Context, caller string, fee decimal.Decimal) error {
	return d.setPolicy(ctx, caller, "membership_fee", func(p *domain.LoanPolicy) error {
		if !fee.IsPositive() || !utils.IsWholeAmount(fee) {
			return customError.WrapInvalidPolicy("membership fee must be a positive whole number of base units")
		}
		p.MembershipFee = fee
		return nil
	})
}

// SetMinMembershipDuration updates the age a membership needs before the
// member may request a loan.
func (d *DAO) SetMinMembershipDuration(ctx context.Context, caller string, duration time.Duration) error {
	return d.setPolicy(ctx, caller, "min_membership_duration", func(p *domain.LoanPolicy) error {
		if duration < 0 {
			return customError.WrapInvalidPolicy("minimum membership duration must not be negative")
		}
		p.MinMembershipDuration = duration
		return nil
	})
}

// SetMaxLoanDuration updates the fixed loan duration in days.
func (d *DAO) SetMaxLoanDuration(ctx context.Context, caller string, days int) error {
	return d.setPolicy(ctx, caller, "max_loan_duration", func(p *domain.LoanPolicy) error {
		if days < 1 {
			return customError.WrapInvalidPolicy("maximum loan duration must be at least one day")
		}
		p.MaxLoanDurationDays = days
		return nil
	})
}

// SetInterestRateRange updates the bounds of the utilization-scaled rate.
func (d *DAO) SetInterestRateRange(ctx context.Context, caller string, minBps, maxBps int64) error {
	return d.setPolicy(ctx, caller, "interest_rate_range", func(p *domain.LoanPolicy) error {
		if minBps < 0 || maxBps > utils.BasisPointDenominator || minBps > maxBps {
			return customError.WrapInvalidPolicy(
				fmt.Sprintf("interest rate range [%d, %d] is invalid", minBps, maxBps))
		}
		p.MinInterestRateBps = minBps
		p.MaxInterestRateBps = maxBps
		return nil
	})
}

// SetCooldownPeriod updates the wait between loans for a borrower.
func (d *DAO) SetCooldownPeriod(ctx context.Context, caller string, period time.Duration) error {
	return d.setPolicy(ctx, caller, "cooldown_period", func(p *domain.LoanPolicy) error {
		if period < 0 {
			return customError.WrapInvalidPolicy("cooldown period must not be negative")
		}
		p.CooldownPeriod = period
		return nil
	})
}

// SetMaxLoanRatio updates the maximum loan-to-treasury ratio.
func (d *DAO) SetMaxLoanRatio(ctx context.Context, caller string, ratioBps int64) error {
	return d.setPolicy(ctx, caller, "max_loan_ratio", func(p *domain.LoanPolicy) error {
		if ratioBps < 1 || ratioBps > utils.BasisPointDenominator {
			return customError.WrapInvalidPolicy("max loan ratio must be between 1 and 10000 basis points")
		}
		p.MaxLoanRatioBps = ratioBps
		return nil
	})
}

// Pause blocks all member-facing mutating entry points.
func (d *DAO) Pause(ctx context.Context, caller string) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireAdmin(caller); err != nil {
			return err
		}
		treasury := t.treasuryState()
		treasury.Paused = true
		treasury.UpdatedAt = t.now
		t.emit(domain.EventPaused, "dao", nil)
		return nil
	})
}

// Unpause re-enables the member-facing entry points.
func (d *DAO) Unpause(ctx context.Context, caller string) error {
	return d.mutate(ctx, func(t *txn) error {
		if err := t.requireAdmin(caller); err != nil {
			return err
		}
		treasury := t.treasuryState()
		treasury.Paused = false
		treasury.UpdatedAt = t.now
		t.emit(domain.EventUnpaused, "dao", nil)
		return nil
	})
}
