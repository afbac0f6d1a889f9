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

// RegisterMember admits a caller who pays exactly the membership fee. The
// fee goes to the treasury and becomes the member's initial share balance.
func (d *DAO) RegisterMember(ctx context.Context, caller string, payment decimal.Decimal) (*domain.Member, error) {
	var out *domain.Member
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}
		if caller == "" {
			return customError.WrapZeroAddress()
		}
		if !utils.IsWholeAmount(payment) {
			return customError.WrapInvalidAmount("payment must be a whole number of base units")
		}

		policy := t.loanPolicy()
		if !payment.Equal(policy.MembershipFee) {
			return customError.WrapIncorrectFee(policy.MembershipFee.String(), payment.String())
		}

		if existing, ok := t.member(caller); ok && existing.Status != domain.MemberStatusInactive {
			return customError.WrapAlreadyMember(caller)
		}

		member := &domain.Member{
			Address:        caller,
			Status:         domain.MemberStatusActive,
			JoinedAt:       t.now,
			Contribution:   payment,
			ShareBalance:   payment,
			PendingRewards: decimal.Zero,
		}
		t.stageMember(member)

		treasury := t.treasuryState()
		treasury.Balance = treasury.Balance.Add(payment)
		treasury.UpdatedAt = t.now

		t.emit(domain.EventMemberRegistered, caller, map[string]interface{}{
			"contribution":   payment.String(),
			"share_balance":  payment.String(),
			"active_members": t.activeMembers(),
		})

		out = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExitDAO pays out the member's tracked share balance (plus any unclaimed
// rewards), zeroes the claim, and deactivates the member. A member with an
// outstanding loan cannot exit.
func (d *DAO) ExitDAO(ctx context.Context, caller string) (decimal.Decimal, error) {
	var share decimal.Decimal
	err := d.mutate(ctx, func(t *txn) error {
		if err := t.requireReady(); err != nil {
			return err
		}

		member, ok := t.member(caller)
		if !ok || member.Status != domain.MemberStatusActive {
			return customError.WrapNotMember(caller)
		}
		if member.HasActiveLoan {
			return customError.WrapHasActiveLoan(caller)
		}

		// Exit share is the tracked balance, not a live recomputation, so
		// concurrent treasury changes cannot dilute a departing member.
		share = member.ShareBalance
		rewards := member.PendingRewards

		treasury := t.treasuryState()
		payout := share.Add(rewards)
		if treasury.Balance.LessThan(payout) {
			return customError.WrapInsufficientTreasury(payout.String(), treasury.Balance.String())
		}

		member.Status = domain.MemberStatusInactive
		member.ShareBalance = decimal.Zero
		member.PendingRewards = decimal.Zero
		t.stageMember(member)

		treasury.Balance = treasury.Balance.Sub(payout)
		treasury.UpdatedAt = t.now

		if share.IsPositive() {
			t.transfer(domain.TransferKindExit, caller, share, caller)
		}
		if rewards.IsPositive() {
			t.transfer(domain.TransferKindReward, caller, rewards, caller)
		}

		t.emit(domain.EventMemberExited, caller, map[string]interface{}{
			"exit_share":     share.String(),
			"rewards":        rewards.String(),
			"active_members": t.activeMembers(),
		})
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return share, nil
}

// eligibleForLoan applies the policy's membership-age, cooldown and
// single-active-loan rules. Returns a reason usable in the error message.
func eligibleForLoan(member *domain.Member, policy *domain.LoanPolicy, now time.Time) (bool, string) {
	if member.Status != domain.MemberStatusActive {
		return false, "not an active member"
	}
	if now.Sub(member.JoinedAt) < policy.MinMembershipDuration {
		return false, fmt.Sprintf("membership younger than %s", policy.MinMembershipDuration)
	}
	if member.HasActiveLoan {
		return false, "an active loan is outstanding"
	}
	if member.LastLoanAt != nil && now.Sub(*member.LastLoanAt) < policy.CooldownPeriod {
		return false, fmt.Sprintf("cooldown of %s since last loan not elapsed", policy.CooldownPeriod)
	}
	return true, ""
}

func (t *txn) isEligibleForLoan(member *domain.Member) (bool, string) {
	return eligibleForLoan(member, t.loanPolicy(), t.now)
}
