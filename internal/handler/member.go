package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/p2pdao/lending-dao/internal/domain"
	"github.com/p2pdao/lending-dao/pkg/response"
)

// RegisterMember handles POST /api/v1/members
func (h *DAOHandler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.RegisterMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	member, err := h.dao.RegisterMember(r.Context(), caller, req.Payment)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, member)
}

// ExitDAO handles POST /api/v1/members/exit
func (h *DAOHandler) ExitDAO(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	share, err := h.dao.ExitDAO(r.Context(), caller)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"address":    caller,
		"exit_share": share,
	})
}

// GetMember handles GET /api/v1/members/{address}
func (h *DAOHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	member, err := h.dao.GetMember(address)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, member)
}

// GetExitShare handles GET /api/v1/members/{address}/exit-share
func (h *DAOHandler) GetExitShare(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	share, err := h.dao.CalculateExitShare(address)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"address":    address,
		"exit_share": share,
	})
}

// ClaimRewards handles POST /api/v1/rewards/claims
func (h *DAOHandler) ClaimRewards(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	claimed, err := h.dao.ClaimRewards(r.Context(), caller)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, &domain.ClaimRewardsResponse{
		Member: caller,
		Amount: claimed,
	})
}
