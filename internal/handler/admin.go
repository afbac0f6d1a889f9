package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/p2pdao/lending-dao/internal/domain"
	"github.com/p2pdao/lending-dao/pkg/response"
)

// Initialize handles POST /api/v1/admin/initialize
func (h *DAOHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req domain.InitializeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.Initialize(r.Context(), req.Admins, req.ConsensusThresholdBps, req.MembershipFee); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"admins":                  req.Admins,
		"consensus_threshold_bps": req.ConsensusThresholdBps,
		"membership_fee":          req.MembershipFee,
	})
}

// AddAdmin handles POST /api/v1/admin/admins
func (h *DAOHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.AddAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.AddAdmin(r.Context(), caller, req.Address); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, map[string]interface{}{"address": req.Address})
}

// RemoveAdmin handles DELETE /api/v1/admin/admins/{address}
func (h *DAOHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	address := mux.Vars(r)["address"]

	if err := h.dao.RemoveAdmin(r.Context(), caller, address); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"address": address})
}

// SetConsensusThreshold handles PUT /api/v1/admin/policy/threshold
func (h *DAOHandler) SetConsensusThreshold(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetThresholdRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.SetConsensusThreshold(r.Context(), caller, req.ThresholdBps); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetMembershipFee handles PUT /api/v1/admin/policy/fee
func (h *DAOHandler) SetMembershipFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetFeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.SetMembershipContribution(r.Context(), caller, req.Fee); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetMinMembershipDuration handles PUT /api/v1/admin/policy/min-membership-duration
func (h *DAOHandler) SetMinMembershipDuration(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetDurationRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.dao.SetMinMembershipDuration(r.Context(), caller, time.Duration(req.Seconds)*time.Second)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetMaxLoanDuration handles PUT /api/v1/admin/policy/max-loan-duration
func (h *DAOHandler) SetMaxLoanDuration(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetLoanDurationRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.SetMaxLoanDuration(r.Context(), caller, req.Days); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetInterestRateRange handles PUT /api/v1/admin/policy/rate-range
func (h *DAOHandler) SetInterestRateRange(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetRateRangeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.SetInterestRateRange(r.Context(), caller, req.MinBps, req.MaxBps); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetCooldownPeriod handles PUT /api/v1/admin/policy/cooldown
func (h *DAOHandler) SetCooldownPeriod(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetDurationRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.dao.SetCooldownPeriod(r.Context(), caller, time.Duration(req.Seconds)*time.Second)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// SetMaxLoanRatio handles PUT /api/v1/admin/policy/max-loan-ratio
func (h *DAOHandler) SetMaxLoanRatio(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.SetRatioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.dao.SetMaxLoanRatio(r.Context(), caller, req.RatioBps); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, h.dao.Policy())
}

// Pause handles POST /api/v1/admin/pause
func (h *DAOHandler) Pause(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.dao.Pause(r.Context(), caller); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"paused": true})
}

// Unpause handles POST /api/v1/admin/unpause
func (h *DAOHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.dao.Unpause(r.Context(), caller); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"paused": false})
}

// SweepExpiredProposals handles POST /api/v1/admin/proposals/sweep
func (h *DAOHandler) SweepExpiredProposals(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	swept, err := h.dao.SweepExpiredProposals(r.Context(), caller)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"swept": swept})
}
