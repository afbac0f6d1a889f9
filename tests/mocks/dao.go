package mocks

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/p2pdao/lending-dao/internal/domain"
)

// MemoryStore is an in-memory Store for tests that need the full stack
// without a database. It records every applied changeset.
type MemoryStore struct {
	mu       sync.Mutex
	Applied  []*domain.Changeset
	Snapshot *domain.Snapshot
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Snapshot: &domain.Snapshot{}}
}

func (s *MemoryStore) Apply(_ context.Context, cs *domain.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.Applied = append(s.Applied, cs)
	return nil
}

func (s *MemoryStore) LoadState(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Snapshot, nil
}

// TransferRecord captures a single outbound settlement instruction.
type TransferRecord struct {
	Kind        string
	Destination string
	Amount      decimal.Decimal
}

// RecordingGateway is an in-memory FundGateway. FailKind, when set, makes
// transfers of that kind fail.
type RecordingGateway struct {
	mu        sync.Mutex
	Transfers []TransferRecord
	FailKind  string
	FailWith  error
}

func (g *RecordingGateway) Transfer(_ context.Context, kind, destination string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWith != nil && (g.FailKind == "" || g.FailKind == kind) {
		return g.FailWith
	}
	g.Transfers = append(g.Transfers, TransferRecord{Kind: kind, Destination: destination, Amount: amount})
	return nil
}

// RecordingSink collects published events.
type RecordingSink struct {
	mu     sync.Mutex
	Events []*domain.Event
}

func (s *RecordingSink) Publish(_ context.Context, events []*domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, events...)
}

func (s *RecordingSink) Types() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]int)
	for _, e := range s.Events {
		seen[e.Type]++
	}
	return seen
}

// MockFundGateway is a testify mock for expectation-style gateway tests.
type MockFundGateway struct {
	mock.Mock
}

func (m *MockFundGateway) Transfer(ctx context.Context, kind, destination string, amount decimal.Decimal) error {
	args := m.Called(ctx, kind, destination, amount)
	return args.Error(0)
}
