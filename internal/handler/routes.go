package handler

import (
	"github.com/gorilla/mux"

	"github.com/p2pdao/lending-dao/pkg/response"
)

// Routes wires the full API surface. The health handler is optional so
// in-process tests can mount the API without a database.
func Routes(daoHandler *DAOHandler, healthHandler *HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	if healthHandler != nil {
		router.HandleFunc("/health", healthHandler.Health).Methods("GET")
		router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Membership
	api.HandleFunc("/members", daoHandler.RegisterMember).Methods("POST")
	api.HandleFunc("/members/exit", daoHandler.ExitDAO).Methods("POST")
	api.HandleFunc("/members/{address}", daoHandler.GetMember).Methods("GET")
	api.HandleFunc("/members/{address}/exit-share", daoHandler.GetExitShare).Methods("GET")

	// Loan proposals and loans
	api.HandleFunc("/loans/proposals", daoHandler.RequestLoan).Methods("POST")
	api.HandleFunc("/loans/proposals/{proposalId}", daoHandler.EditLoanProposal).Methods("PUT")
	api.HandleFunc("/loans/proposals/{proposalId}/votes", daoHandler.VoteOnLoanProposal).Methods("POST")
	api.HandleFunc("/loans/proposals/{proposalId}", daoHandler.GetLoanProposal).Methods("GET")
	api.HandleFunc("/loans/proposals/{proposalId}/loan", daoHandler.GetLoanForProposal).Methods("GET")
	api.HandleFunc("/loans/terms", daoHandler.PreviewLoanTerms).Methods("GET")
	api.HandleFunc("/loans/{loanId}", daoHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/repayments", daoHandler.RepayLoan).Methods("POST")

	// Rewards
	api.HandleFunc("/rewards/claims", daoHandler.ClaimRewards).Methods("POST")

	// Treasury
	api.HandleFunc("/treasury/donations", daoHandler.Donate).Methods("POST")
	api.HandleFunc("/treasury/proposals", daoHandler.ProposeTreasuryWithdrawal).Methods("POST")
	api.HandleFunc("/treasury/proposals/{proposalId}/votes", daoHandler.VoteOnTreasuryProposal).Methods("POST")
	api.HandleFunc("/treasury/proposals/{proposalId}", daoHandler.GetTreasuryProposal).Methods("GET")
	api.HandleFunc("/treasury", daoHandler.GetTreasury).Methods("GET")
	api.HandleFunc("/policy", daoHandler.GetPolicy).Methods("GET")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/initialize", daoHandler.Initialize).Methods("POST")
	admin.HandleFunc("/admins", daoHandler.AddAdmin).Methods("POST")
	admin.HandleFunc("/admins/{address}", daoHandler.RemoveAdmin).Methods("DELETE")
	admin.HandleFunc("/policy/threshold", daoHandler.SetConsensusThreshold).Methods("PUT")
	admin.HandleFunc("/policy/fee", daoHandler.SetMembershipFee).Methods("PUT")
	admin.HandleFunc("/policy/min-membership-duration", daoHandler.SetMinMembershipDuration).Methods("PUT")
	admin.HandleFunc("/policy/max-loan-duration", daoHandler.SetMaxLoanDuration).Methods("PUT")
	admin.HandleFunc("/policy/rate-range", daoHandler.SetInterestRateRange).Methods("PUT")
	admin.HandleFunc("/policy/cooldown", daoHandler.SetCooldownPeriod).Methods("PUT")
	admin.HandleFunc("/policy/max-loan-ratio", daoHandler.SetMaxLoanRatio).Methods("PUT")
	admin.HandleFunc("/pause", daoHandler.Pause).Methods("POST")
	admin.HandleFunc("/unpause", daoHandler.Unpause).Methods("POST")
	admin.HandleFunc("/proposals/sweep", daoHandler.SweepExpiredProposals).Methods("POST")

	return router
}
