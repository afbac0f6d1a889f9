package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/p2pdao/lending-dao/internal/domain"
	customError "github.com/p2pdao/lending-dao/pkg/errors"
)

const (
	adminAddr = "0xadmin"
	alice     = "0xaaaa"
	bob       = "0xbbbb"
	carol     = "0xcccc"
	dave      = "0xdddd"
)

// fee in base units; one "coin" is 1_000_000 units in these tests.
var testFee = decimal.NewFromInt(1_000_000)

type stubStore struct {
	applied  []*domain.Changeset
	failNext bool
}

func (s *stubStore) Apply(_ context.Context, cs *domain.Changeset) error {
	if s.failNext {
		s.failNext = false
		return errors.New("store down")
	}
	s.applied = append(s.applied, cs)
	return nil
}

func (s *stubStore) LoadState(_ context.Context) (*domain.Snapshot, error) {
	return &domain.Snapshot{}, nil
}

type transferRecord struct {
	kind        string
	destination string
	amount      decimal.Decimal
}

type stubGateway struct {
	transfers  []transferRecord
	onTransfer func(kind, destination string, amount decimal.Decimal) error
}

func (g *stubGateway) Transfer(_ context.Context, kind, destination string, amount decimal.Decimal) error {
	if g.onTransfer != nil {
		if err := g.onTransfer(kind, destination, amount); err != nil {
			return err
		}
	}
	g.transfers = append(g.transfers, transferRecord{kind: kind, destination: destination, amount: amount})
	return nil
}

type stubSink struct {
	events []*domain.Event
}

func (s *stubSink) Publish(_ context.Context, events []*domain.Event) {
	s.events = append(s.events, events...)
}

func (s *stubSink) typesSeen() map[string]int {
	seen := make(map[string]int)
	for _, e := range s.events {
		seen[e.Type]++
	}
	return seen
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testPolicy() *domain.LoanPolicy {
	return &domain.LoanPolicy{
		ConsensusThresholdBps: 5100,
		MembershipFee:         testFee,
		MinMembershipDuration: 0,
		MaxLoanDurationDays:   30,
		MinInterestRateBps:    1000,
		MaxInterestRateBps:    1000,
		CooldownPeriod:        0,
		MaxLoanRatioBps:       5000,
	}
}

type fixture struct {
	dao     *DAO
	store   *stubStore
	gateway *stubGateway
	sink    *stubSink
	clock   *testClock
}

// newFixture returns an initialized DAO with a flat 10% rate policy and a
// 51% consensus threshold.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   &stubStore{},
		gateway: &stubGateway{},
		sink:    &stubSink{},
		clock:   &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.dao = New(f.store, f.gateway, f.sink, testPolicy(), WithClock(f.clock.Now))
	require.NoError(t, f.dao.Load(context.Background()))
	require.NoError(t, f.dao.Initialize(context.Background(), []string{adminAddr}, 5100, testFee))
	return f
}

func (f *fixture) register(t *testing.T, addrs ...string) {
	t.Helper()
	for _, addr := range addrs {
		_, err := f.dao.RegisterMember(context.Background(), addr, testFee)
		require.NoError(t, err)
	}
}

func (f *fixture) treasuryBalance() decimal.Decimal {
	return f.dao.Treasury().Balance
}

func findLoanID(t *testing.T, f *fixture, proposalID uuid.UUID) uuid.UUID {
	t.Helper()
	loan, err := f.dao.LoanForProposal(proposalID)
	require.NoError(t, err)
	return loan.ID
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, customError.CodeOf(err), "unexpected error: %v", err)
}
