package domain

// Snapshot is the full persisted entity set used to rebuild the in-memory
// state on startup. Voter sets are already folded into the proposals.
type Snapshot struct {
	Members           []*Member
	LoanProposals     []*LoanProposal
	Loans             []*Loan
	TreasuryProposals []*TreasuryProposal
	Policy            *LoanPolicy
	Treasury          *TreasuryState
	Admins            []*Admin
}
