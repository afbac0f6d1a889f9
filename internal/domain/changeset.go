package domain

// Changeset collects every entity touched by one mutating call. It is
// persisted in a single store transaction and only then applied to the
// in-memory state, so a failed call leaves no partial effects.
type Changeset struct {
	Members           []*Member
	LoanProposals     []*LoanProposal
	LoanVotes         []*Vote
	Loans             []*Loan
	TreasuryProposals []*TreasuryProposal
	TreasuryVotes     []*Vote
	Policy            *LoanPolicy
	Treasury          *TreasuryState
	Admins            []*Admin
	Transfers         []*Transfer
	Events            []*Event
}

// Empty reports whether the changeset stages no writes at all.
func (c *Changeset) Empty() bool {
	return len(c.Members) == 0 &&
		len(c.LoanProposals) == 0 &&
		len(c.LoanVotes) == 0 &&
		len(c.Loans) == 0 &&
		len(c.TreasuryProposals) == 0 &&
		len(c.TreasuryVotes) == 0 &&
		c.Policy == nil &&
		c.Treasury == nil &&
		len(c.Admins) == 0 &&
		len(c.Transfers) == 0 &&
		len(c.Events) == 0
}
