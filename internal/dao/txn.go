package dao

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
)

// txn stages clones of every entity a call touches. Nothing in the shared
// maps is mutated until commit, so an error anywhere reverts the call.
type txn struct {
	d   *DAO
	now time.Time

	members           map[string]*domain.Member
	loanProposals     map[uuid.UUID]*domain.LoanProposal
	loans             map[uuid.UUID]*domain.Loan
	treasuryProposals map[uuid.UUID]*domain.TreasuryProposal
	policy            *domain.LoanPolicy
	treasury          *domain.TreasuryState
	admins            map[string]*domain.Admin

	loanVotes     []*domain.Vote
	treasuryVotes []*domain.Vote
	transfers     []*domain.Transfer
	events        []*domain.Event
}

func newTxn(d *DAO) *txn {
	return &txn{
		d:                 d,
		now:               d.now(),
		members:           make(map[string]*domain.Member),
		loanProposals:     make(map[uuid.UUID]*domain.LoanProposal),
		loans:             make(map[uuid.UUID]*domain.Loan),
		treasuryProposals: make(map[uuid.UUID]*domain.TreasuryProposal),
		admins:            make(map[string]*domain.Admin),
	}
}

// member returns the staged clone for an address, cloning from shared
// state on first access.
func (t *txn) member(address string) (*domain.Member, bool) {
	if m, ok := t.members[address]; ok {
		return m, true
	}
	t.d.stateMu.RLock()
	m, ok := t.d.members[address]
	t.d.stateMu.RUnlock()
	if !ok {
		return nil, false
	}
	clone := m.Clone()
	t.members[address] = clone
	return clone, true
}

func (t *txn) stageMember(m *domain.Member) {
	m.UpdatedAt = t.now
	t.members[m.Address] = m
}

func (t *txn) loanProposal(id uuid.UUID) (*domain.LoanProposal, bool) {
	if p, ok := t.loanProposals[id]; ok {
		return p, true
	}
	t.d.stateMu.RLock()
	p, ok := t.d.loanProposals[id]
	t.d.stateMu.RUnlock()
	if !ok {
		return nil, false
	}
	clone := p.Clone()
	t.loanProposals[id] = clone
	return clone, true
}

func (t *txn) stageLoanProposal(p *domain.LoanProposal) {
	p.UpdatedAt = t.now
	t.loanProposals[p.ID] = p
}

func (t *txn) loan(id uuid.UUID) (*domain.Loan, bool) {
	if l, ok := t.loans[id]; ok {
		return l, true
	}
	t.d.stateMu.RLock()
	l, ok := t.d.loans[id]
	t.d.stateMu.RUnlock()
	if !ok {
		return nil, false
	}
	clone := l.Clone()
	t.loans[id] = clone
	return clone, true
}

func (t *txn) stageLoan(l *domain.Loan) {
	l.UpdatedAt = t.now
	t.loans[l.ID] = l
}

func (t *txn) treasuryProposal(id uuid.UUID) (*domain.TreasuryProposal, bool) {
	if p, ok := t.treasuryProposals[id]; ok {
		return p, true
	}
	t.d.stateMu.RLock()
	p, ok := t.d.treasuryProposals[id]
	t.d.stateMu.RUnlock()
	if !ok {
		return nil, false
	}
	clone := p.Clone()
	t.treasuryProposals[id] = clone
	return clone, true
}

func (t *txn) stageTreasuryProposal(p *domain.TreasuryProposal) {
	p.UpdatedAt = t.now
	t.treasuryProposals[p.ID] = p
}

func (t *txn) treasuryState() *domain.TreasuryState {
	if t.treasury == nil {
		t.d.stateMu.RLock()
		t.treasury = t.d.treasury.Clone()
		t.d.stateMu.RUnlock()
	}
	return t.treasury
}

func (t *txn) loanPolicy() *domain.LoanPolicy {
	if t.policy == nil {
		t.d.stateMu.RLock()
		t.policy = t.d.policy.Clone()
		t.d.stateMu.RUnlock()
	}
	return t.policy
}

func (t *txn) stageAdmin(address string, active bool) {
	t.admins[address] = &domain.Admin{Address: address, Active: active, UpdatedAt: t.now}
}

func (t *txn) isAdmin(address string) bool {
	if a, ok := t.admins[address]; ok {
		return a.Active
	}
	t.d.stateMu.RLock()
	defer t.d.stateMu.RUnlock()
	return t.d.admins[address]
}

// activeMembers counts active members, taking staged status changes into
// account. This is the consensus denominator.
func (t *txn) activeMembers() int64 {
	t.d.stateMu.RLock()
	defer t.d.stateMu.RUnlock()

	var count int64
	for addr, m := range t.d.members {
		status := m.Status
		if staged, ok := t.members[addr]; ok {
			status = staged.Status
		}
		if status == domain.MemberStatusActive {
			count++
		}
	}
	// staged members not yet in shared state
	for addr, m := range t.members {
		if _, ok := t.d.members[addr]; !ok && m.Status == domain.MemberStatusActive {
			count++
		}
	}
	return count
}

// activeMemberAddrs returns the addresses sharing an interest distribution.
func (t *txn) activeMemberAddrs() []string {
	t.d.stateMu.RLock()
	defer t.d.stateMu.RUnlock()

	var addrs []string
	for addr, m := range t.d.members {
		status := m.Status
		if staged, ok := t.members[addr]; ok {
			status = staged.Status
		}
		if status == domain.MemberStatusActive {
			addrs = append(addrs, addr)
		}
	}
	for addr, m := range t.members {
		if _, ok := t.d.members[addr]; !ok && m.Status == domain.MemberStatusActive {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

func (t *txn) recordLoanVote(v *domain.Vote) {
	t.loanVotes = append(t.loanVotes, v)
}

func (t *txn) recordTreasuryVote(v *domain.Vote) {
	t.treasuryVotes = append(t.treasuryVotes, v)
}

// transfer stages an outbound payout; the gateway is invoked on commit,
// after all bookkeeping is staged.
func (t *txn) transfer(kind, destination string, amount decimal.Decimal, reference string) {
	t.transfers = append(t.transfers, &domain.Transfer{
		ID:          uuid.New(),
		Kind:        kind,
		Destination: destination,
		Amount:      amount,
		Reference:   reference,
		CreatedAt:   t.now,
	})
}

func (t *txn) emit(eventType, entityID string, payload map[string]interface{}) {
	t.events = append(t.events, domain.NewEvent(eventType, entityID, payload, t.now))
}

// changeset flattens the staged state into the persistable form.
func (t *txn) changeset() *domain.Changeset {
	cs := &domain.Changeset{
		Policy:        t.policy,
		Treasury:      t.treasury,
		LoanVotes:     t.loanVotes,
		TreasuryVotes: t.treasuryVotes,
		Transfers:     t.transfers,
		Events:        t.events,
	}
	for _, m := range t.members {
		cs.Members = append(cs.Members, m)
	}
	for _, p := range t.loanProposals {
		cs.LoanProposals = append(cs.LoanProposals, p)
	}
	for _, l := range t.loans {
		cs.Loans = append(cs.Loans, l)
	}
	for _, p := range t.treasuryProposals {
		cs.TreasuryProposals = append(cs.TreasuryProposals, p)
	}
	for _, a := range t.admins {
		cs.Admins = append(cs.Admins, a)
	}
	return cs
}

// commit swaps the staged clones into shared state. Caller holds stateMu.
func (t *txn) commit() {
	for addr, m := range t.members {
		t.d.members[addr] = m
	}
	for id, p := range t.loanProposals {
		t.d.loanProposals[id] = p
	}
	for id, l := range t.loans {
		t.d.loans[id] = l
	}
	for id, p := range t.treasuryProposals {
		t.d.treasuryProposals[id] = p
	}
	if t.policy != nil {
		t.d.policy = t.policy
	}
	if t.treasury != nil {
		t.d.treasury = t.treasury
	}
	for addr, a := range t.admins {
		if a.Active {
			t.d.admins[addr] = true
		} else {
			delete(t.d.admins, addr)
		}
	}
}
