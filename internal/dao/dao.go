package dao

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

// Fixed lifecycle windows. The editing window opens on proposal creation;
// the voting window runs from the end of editing (loan proposals) or from
// creation (treasury proposals).
const (
	EditingPeriod = 3 * 24 * time.Hour
	VotingPeriod  = 7 * 24 * time.Hour
)

// Store persists a whole changeset in one transaction and rebuilds the
// entity set on startup.
type Store interface {
	Apply(ctx context.Context, cs *domain.Changeset) error
	LoadState(ctx context.Context) (*domain.Snapshot, error)
}

// FundGateway moves funds to an external destination. A rejection aborts
// the enclosing call before anything is committed.
type FundGateway interface {
	Transfer(ctx context.Context, kind, destination string, amount decimal.Decimal) error
}

// EventSink receives the events of every committed call, after commit.
type EventSink interface {
	Publish(ctx context.Context, events []*domain.Event)
}

// DAO is the lending/governance state machine. All state lives in memory
// and every mutating call is applied atomically: validations run first,
// staged copies are persisted through the Store, and only then swapped in.
type DAO struct {
	store   Store
	gateway FundGateway
	sink    EventSink
	now     func() time.Time

	// guard rejects overlapping or nested mutating calls outright; the
	// caller retries, matching the ledger's serialized execution model.
	guard atomic.Bool

	// stateMu protects the maps below. Mutating calls hold the guard for
	// their whole duration and only take the write lock for the final swap.
	stateMu sync.RWMutex

	members           map[string]*domain.Member
	loanProposals     map[uuid.UUID]*domain.LoanProposal
	loans             map[uuid.UUID]*domain.Loan
	treasuryProposals map[uuid.UUID]*domain.TreasuryProposal
	policy            *domain.LoanPolicy
	treasury          *domain.TreasuryState
	admins            map[string]bool
}

// Option configures a DAO.
type Option func(*DAO)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *DAO) { d.now = now }
}

// New creates a DAO with the given collaborators and default policy. Call
// Load before serving to rebuild state from the store.
func New(store Store, gateway FundGateway, sink EventSink, defaults *domain.LoanPolicy, opts ...Option) *DAO {
	d := &DAO{
		store:             store,
		gateway:           gateway,
		sink:              sink,
		now:               time.Now,
		members:           make(map[string]*domain.Member),
		loanProposals:     make(map[uuid.UUID]*domain.LoanProposal),
		loans:             make(map[uuid.UUID]*domain.Loan),
		treasuryProposals: make(map[uuid.UUID]*domain.TreasuryProposal),
		policy:            defaults.Clone(),
		treasury:          &domain.TreasuryState{Balance: decimal.Zero},
		admins:            make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load rebuilds the in-memory state from the store.
func (d *DAO) Load(ctx context.Context) error {
	snap, err := d.store.LoadState(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	for _, m := range snap.Members {
		d.members[m.Address] = m
	}
	for _, p := range snap.LoanProposals {
		if p.Voters == nil {
			p.Voters = make(map[string]bool)
		}
		d.loanProposals[p.ID] = p
	}
	for _, l := range snap.Loans {
		d.loans[l.ID] = l
	}
	for _, p := range snap.TreasuryProposals {
		if p.Voters == nil {
			p.Voters = make(map[string]bool)
		}
		d.treasuryProposals[p.ID] = p
	}
	if snap.Policy != nil {
		d.policy = snap.Policy
	}
	if snap.Treasury != nil {
		d.treasury = snap.Treasury
	}
	for _, a := range snap.Admins {
		if a.Active {
			d.admins[a.Address] = true
		}
	}
	return nil
}

// mutate runs one state-mutating call: guard, stage, transfer, persist, swap.
func (d *DAO) mutate(ctx context.Context, fn func(t *txn) error) error {
	if !d.guard.CompareAndSwap(false, true) {
		return customError.WrapReentrancy()
	}
	defer d.guard.Store(false)

	t := newTxn(d)
	if err := fn(t); err != nil {
		return err
	}

	// External transfers happen only after all bookkeeping is staged, and
	// before anything becomes visible. A rejection aborts the whole call.
	for _, tr := range t.transfers {
		if err := d.gateway.Transfer(ctx, tr.Kind, tr.Destination, tr.Amount); err != nil {
			return customError.WrapTransferFailed(tr.Destination, err)
		}
	}

	cs := t.changeset()
	if !cs.Empty() {
		if err := d.store.Apply(ctx, cs); err != nil {
			return customError.WrapDatabaseError(err)
		}
	}

	d.stateMu.Lock()
	t.commit()
	d.stateMu.Unlock()

	if d.sink != nil && len(cs.Events) > 0 {
		d.sink.Publish(ctx, cs.Events)
	}
	return nil
}

// requireReady fails when the DAO is uninitialized or paused. Used by all
// member-facing mutating calls; admin calls gate themselves.
func (t *txn) requireReady() error {
	tr := t.treasuryState()
	if !tr.Initialized {
		return customError.WrapNotInitialized()
	}
	if tr.Paused {
		return customError.WrapPaused()
	}
	return nil
}
