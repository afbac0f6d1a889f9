package handler

import (
	"net/http"

	"github.com/p2pdao/lending-dao/internal/domain"
	"github.com/p2pdao/lending-dao/pkg/response"
)

// Donate handles POST /api/v1/treasury/donations
func (h *DAOHandler) Donate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.DonateRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.Donate(r.Context(), caller, req.Amount); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"donor":  caller,
		"amount": req.Amount,
	})
}

// ProposeTreasuryWithdrawal handles POST /api/v1/treasury/proposals
func (h *DAOHandler) ProposeTreasuryWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.ProposeWithdrawalRequest
	if !h.decode(w, r, &req) {
		return
	}

	proposal, err := h.dao.ProposeTreasuryWithdrawal(r.Context(), caller, req.Amount, req.Destination, req.Reason)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, proposal)
}

// VoteOnTreasuryProposal handles POST /api/v1/treasury/proposals/{proposalId}/votes
func (h *DAOHandler) VoteOnTreasuryProposal(w http.ResponseWriter, r *http.Request) {
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

	proposal, err := h.dao.VoteOnTreasuryProposal(r.Context(), caller, id, *req.Support)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, proposal)
}

// GetTreasuryProposal handles GET /api/v1/treasury/proposals/{proposalId}
func (h *DAOHandler) GetTreasuryProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "proposalId")
	if !ok {
		return
	}

	proposal, err := h.dao.GetTreasuryProposal(id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, proposal)
}

// GetTreasury handles GET /api/v1/treasury
func (h *DAOHandler) GetTreasury(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.dao.Treasury())
}

// GetPolicy handles GET /api/v1/policy
func (h *DAOHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.dao.Policy())
}
