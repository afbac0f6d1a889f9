package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
)

// PostgresStore persists changesets and rebuilds the entity set on boot.
// Apply writes the whole changeset in one transaction so a failed call
// leaves the database exactly as it was.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Apply(ctx context.Context, cs *domain.Changeset) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range cs.Members {
		if err = upsertMember(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, p := range cs.LoanProposals {
		if err = upsertLoanProposal(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, v := range cs.LoanVotes {
		if err = insertVote(ctx, tx, "loan_proposal_votes", v); err != nil {
			return err
		}
	}
	for _, l := range cs.Loans {
		if err = upsertLoan(ctx, tx, l); err != nil {
			return err
		}
	}
	for _, p := range cs.TreasuryProposals {
		if err = upsertTreasuryProposal(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, v := range cs.TreasuryVotes {
		if err = insertVote(ctx, tx, "treasury_proposal_votes", v); err != nil {
			return err
		}
	}
	if cs.Policy != nil {
		if err = upsertPolicy(ctx, tx, cs.Policy); err != nil {
			return err
		}
	}
	if cs.Treasury != nil {
		if err = upsertTreasury(ctx, tx, cs.Treasury); err != nil {
			return err
		}
	}
	for _, a := range cs.Admins {
		if err = upsertAdmin(ctx, tx, a); err != nil {
			return err
		}
	}
	for _, tr := range cs.Transfers {
		if err = insertTransfer(ctx, tx, tr); err != nil {
			return err
		}
	}
	for _, e := range cs.Events {
		if err = insertEvent(ctx, tx, e); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func upsertMember(ctx context.Context, tx *sqlx.Tx, m *domain.Member) error {
	query := `
		INSERT INTO members (address, status, joined_at, contribution, share_balance, pending_rewards, has_active_loan, last_loan_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (address) DO UPDATE SET
			status = EXCLUDED.status,
			joined_at = EXCLUDED.joined_at,
			contribution = EXCLUDED.contribution,
			share_balance = EXCLUDED.share_balance,
			pending_rewards = EXCLUDED.pending_rewards,
			has_active_loan = EXCLUDED.has_active_loan,
			last_loan_at = EXCLUDED.last_loan_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		m.Address,
		m.Status,
		m.JoinedAt,
		m.Contribution,
		m.ShareBalance,
		m.PendingRewards,
		m.HasActiveLoan,
		m.LastLoanAt,
		m.UpdatedAt,
	)
	return err
}

func upsertLoanProposal(ctx context.Context, tx *sqlx.Tx, p *domain.LoanProposal) error {
	query := `
		INSERT INTO loan_proposals (id, borrower, amount, interest_rate_bps, duration_days, total_repayment, status, for_votes, against_votes, created_at, editing_ends_at, voting_ends_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			interest_rate_bps = EXCLUDED.interest_rate_bps,
			duration_days = EXCLUDED.duration_days,
			total_repayment = EXCLUDED.total_repayment,
			status = EXCLUDED.status,
			for_votes = EXCLUDED.for_votes,
			against_votes = EXCLUDED.against_votes,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		p.ID,
		p.Borrower,
		p.Amount,
		p.InterestRateBps,
		p.DurationDays,
		p.TotalRepayment,
		p.Status,
		p.ForVotes,
		p.AgainstVotes,
		p.CreatedAt,
		p.EditingEndsAt,
		p.VotingEndsAt,
		p.UpdatedAt,
	)
	return err
}

func insertVote(ctx context.Context, tx *sqlx.Tx, table string, v *domain.Vote) error {
	query := `
		INSERT INTO ` + table + ` (proposal_id, voter, support, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.ExecContext(ctx, query, v.ProposalID, v.Voter, v.Support, v.CreatedAt)
	return err
}

func upsertLoan(ctx context.Context, tx *sqlx.Tx, l *domain.Loan) error {
	query := `
		INSERT INTO loans (id, proposal_id, borrower, principal, interest_rate_bps, total_repayment, amount_repaid, status, started_at, due_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			amount_repaid = EXCLUDED.amount_repaid,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		l.ID,
		l.ProposalID,
		l.Borrower,
		l.Principal,
		l.InterestRateBps,
		l.TotalRepayment,
		l.AmountRepaid,
		l.Status,
		l.StartedAt,
		l.DueAt,
		l.UpdatedAt,
	)
	return err
}

func upsertTreasuryProposal(ctx context.Context, tx *sqlx.Tx, p *domain.TreasuryProposal) error {
	query := `
		INSERT INTO treasury_proposals (id, proposer, amount, destination, reason, status, for_votes, against_votes, created_at, voting_ends_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			for_votes = EXCLUDED.for_votes,
			against_votes = EXCLUDED.against_votes,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		p.ID,
		p.Proposer,
		p.Amount,
		p.Destination,
		p.Reason,
		p.Status,
		p.ForVotes,
		p.AgainstVotes,
		p.CreatedAt,
		p.VotingEndsAt,
		p.UpdatedAt,
	)
	return err
}

func upsertPolicy(ctx context.Context, tx *sqlx.Tx, p *domain.LoanPolicy) error {
	query := `
		INSERT INTO loan_policy (id, consensus_threshold_bps, membership_fee, min_membership_duration_secs, max_loan_duration_days, min_interest_rate_bps, max_interest_rate_bps, cooldown_period_secs, max_loan_ratio_bps, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			consensus_threshold_bps = EXCLUDED.consensus_threshold_bps,
			membership_fee = EXCLUDED.membership_fee,
			min_membership_duration_secs = EXCLUDED.min_membership_duration_secs,
			max_loan_duration_days = EXCLUDED.max_loan_duration_days,
			min_interest_rate_bps = EXCLUDED.min_interest_rate_bps,
			max_interest_rate_bps = EXCLUDED.max_interest_rate_bps,
			cooldown_period_secs = EXCLUDED.cooldown_period_secs,
			max_loan_ratio_bps = EXCLUDED.max_loan_ratio_bps,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		p.ConsensusThresholdBps,
		p.MembershipFee,
		int64(p.MinMembershipDuration.Seconds()),
		p.MaxLoanDurationDays,
		p.MinInterestRateBps,
		p.MaxInterestRateBps,
		int64(p.CooldownPeriod.Seconds()),
		p.MaxLoanRatioBps,
		p.UpdatedAt,
	)
	return err
}

func upsertTreasury(ctx context.Context, tx *sqlx.Tx, t *domain.TreasuryState) error {
	query := `
		INSERT INTO treasury_state (id, balance, paused, initialized, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			balance = EXCLUDED.balance,
			paused = EXCLUDED.paused,
			initialized = EXCLUDED.initialized,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query, t.Balance, t.Paused, t.Initialized, t.UpdatedAt)
	return err
}

func upsertAdmin(ctx context.Context, tx *sqlx.Tx, a *domain.Admin) error {
	query := `
		INSERT INTO admins (address, active, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.ExecContext(ctx, query, a.Address, a.Active, a.UpdatedAt)
	return err
}

func insertTransfer(ctx context.Context, tx *sqlx.Tx, t *domain.Transfer) error {
	query := `
		INSERT INTO payouts (id, kind, destination, amount, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(ctx, query, t.ID, t.Kind, t.Destination, t.Amount, t.Reference, t.CreatedAt)
	return err
}

func insertEvent(ctx context.Context, tx *sqlx.Tx, e *domain.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (id, type, entity_id, payload, emitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.ExecContext(ctx, query, e.ID, e.Type, e.EntityID, payload, e.EmittedAt)
	return err
}

type policyRow struct {
	ConsensusThresholdBps     int64           `db:"consensus_threshold_bps"`
	MembershipFee             decimal.Decimal `db:"membership_fee"`
	MinMembershipDurationSecs int64           `db:"min_membership_duration_secs"`
	MaxLoanDurationDays       int             `db:"max_loan_duration_days"`
	MinInterestRateBps        int64           `db:"min_interest_rate_bps"`
	MaxInterestRateBps        int64           `db:"max_interest_rate_bps"`
	CooldownPeriodSecs        int64           `db:"cooldown_period_secs"`
	MaxLoanRatioBps           int64           `db:"max_loan_ratio_bps"`
	UpdatedAt                 time.Time       `db:"updated_at"`
}

func (s *PostgresStore) LoadState(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	if err := s.db.SelectContext(ctx, &snap.Members, `
		SELECT address, status, joined_at, contribution, share_balance, pending_rewards, has_active_loan, last_loan_at, updated_at
		FROM members
	`); err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &snap.LoanProposals, `
		SELECT id, borrower, amount, interest_rate_bps, duration_days, total_repayment, status, for_votes, against_votes, created_at, editing_ends_at, voting_ends_at, updated_at
		FROM loan_proposals
	`); err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &snap.Loans, `
		SELECT id, proposal_id, borrower, principal, interest_rate_bps, total_repayment, amount_repaid, status, started_at, due_at, updated_at
		FROM loans
	`); err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &snap.TreasuryProposals, `
		SELECT id, proposer, amount, destination, reason, status, for_votes, against_votes, created_at, voting_ends_at, updated_at
		FROM treasury_proposals
	`); err != nil {
		return nil, err
	}

	if err := s.loadVoters(ctx, snap); err != nil {
		return nil, err
	}

	var policies []policyRow
	if err := s.db.SelectContext(ctx, &policies, `
		SELECT consensus_threshold_bps, membership_fee, min_membership_duration_secs, max_loan_duration_days, min_interest_rate_bps, max_interest_rate_bps, cooldown_period_secs, max_loan_ratio_bps, updated_at
		FROM loan_policy WHERE id = 1
	`); err != nil {
		return nil, err
	}
	if len(policies) > 0 {
		row := policies[0]
		snap.Policy = &domain.LoanPolicy{
			ConsensusThresholdBps: row.ConsensusThresholdBps,
			MembershipFee:         row.MembershipFee,
			MinMembershipDuration: time.Duration(row.MinMembershipDurationSecs) * time.Second,
			MaxLoanDurationDays:   row.MaxLoanDurationDays,
			MinInterestRateBps:    row.MinInterestRateBps,
			MaxInterestRateBps:    row.MaxInterestRateBps,
			CooldownPeriod:        time.Duration(row.CooldownPeriodSecs) * time.Second,
			MaxLoanRatioBps:       row.MaxLoanRatioBps,
			UpdatedAt:             row.UpdatedAt,
		}
	}

	var treasuries []*domain.TreasuryState
	if err := s.db.SelectContext(ctx, &treasuries, `
		SELECT balance, paused, initialized, updated_at
		FROM treasury_state WHERE id = 1
	`); err != nil {
		return nil, err
	}
	if len(treasuries) > 0 {
		snap.Treasury = treasuries[0]
	}

	if err := s.db.SelectContext(ctx, &snap.Admins, `
		SELECT address, active, updated_at
		FROM admins
	`); err != nil {
		return nil, err
	}

	return snap, nil
}

// loadVoters folds the persisted vote rows back into the per-proposal
// voter sets.
func (s *PostgresStore) loadVoters(ctx context.Context, snap *domain.Snapshot) error {
	var loanVotes []*domain.Vote
	if err := s.db.SelectContext(ctx, &loanVotes, `
		SELECT proposal_id, voter, support, created_at FROM loan_proposal_votes
	`); err != nil {
		return err
	}

	loanByID := make(map[string]*domain.LoanProposal, len(snap.LoanProposals))
	for _, p := range snap.LoanProposals {
		p.Voters = make(map[string]bool)
		loanByID[p.ID.String()] = p
	}
	for _, v := range loanVotes {
		if p, ok := loanByID[v.ProposalID.String()]; ok {
			p.Voters[v.Voter] = true
		}
	}

	var treasuryVotes []*domain.Vote
	if err := s.db.SelectContext(ctx, &treasuryVotes, `
		SELECT proposal_id, voter, support, created_at FROM treasury_proposal_votes
	`); err != nil {
		return err
	}

	treasuryByID := make(map[string]*domain.TreasuryProposal, len(snap.TreasuryProposals))
	for _, p := range snap.TreasuryProposals {
		p.Voters = make(map[string]bool)
		treasuryByID[p.ID.String()] = p
	}
	for _, v := range treasuryVotes {
		if p, ok := treasuryByID[v.ProposalID.String()]; ok {
			p.Voters[v.Voter] = true
		}
	}

	return nil
}
