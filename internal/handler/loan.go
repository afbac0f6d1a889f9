package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/p2pdao/lending-dao/internal/domain"
	"github.com/p2pdao/lending-dao/pkg/response"
)

// RequestLoan handles POST /api/v1/loans/proposals
func (h *DAOHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.RequestLoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	proposal, err := h.dao.RequestLoan(r.Context(), caller, req.Amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, proposal)
}

// EditLoanProposal handles PUT /api/v1/loans/proposals/{proposalId}
func (h *DAOHandler) EditLoanProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "proposalId")
	if !ok {
		return
	}

	var req domain.EditLoanProposalRequest
	if !h.decode(w, r, &req) {
		return
	}

	proposal, err := h.dao.EditLoanProposal(r.Context(), caller, id, req.Amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, proposal)
}

// VoteOnLoanProposal handles POST /api/v1/loans/proposals/{proposalId}/votes
func (h *DAOHandler) VoteOnLoanProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "proposalId")
	if !ok {
		return
	}

	var req domain.VoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	proposal, err := h.dao.VoteOnLoanProposal(r.Context(), caller, id, *req.Support)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, proposal)
}

// GetLoanProposal handles GET /api/v1/loans/proposals/{proposalId}
func (h *DAOHandler) GetLoanProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "proposalId")
	if !ok {
		return
	}

	proposal, err := h.dao.GetLoanProposal(id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, proposal)
}

// GetLoanForProposal handles GET /api/v1/loans/proposals/{proposalId}/loan
func (h *DAOHandler) GetLoanForProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "proposalId")
	if !ok {
		return
	}

	loan, err := h.dao.LoanForProposal(id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *DAOHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.dao.GetLoan(id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// RepayLoan handles POST /api/v1/loans/{loanId}/repayments
func (h *DAOHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	var req domain.RepayLoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.dao.RepayLoan(r.Context(), caller, id, req.Amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// PreviewLoanTerms handles GET /api/v1/loans/terms?amount=
func (h *DAOHandler) PreviewLoanTerms(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		response.BadRequest(w, "Invalid amount", err)
		return
	}

	terms, err := h.dao.PreviewLoanTerms(amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, terms)
}
