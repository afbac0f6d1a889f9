package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/p2pdao/lending-dao/internal/dao"
	"github.com/p2pdao/lending-dao/pkg/response"
)

// CallerHeader carries the caller's address on every authenticated request.
const CallerHeader = "X-Caller-Address"

type DAOHandler struct {
	dao       *dao.DAO
	validator *validator.Validate
}

func NewDAOHandler(d *dao.DAO) *DAOHandler {
	return &DAOHandler{
		dao:       d,
		validator: validator.New(),
	}
}

// caller extracts the caller address or writes a 401 and returns false.
func (h *DAOHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr := r.Header.Get(CallerHeader)
	if addr == "" {
		response.Unauthorized(w, "Missing "+CallerHeader+" header")
		return "", false
	}
	return addr, true
}

// decode parses the JSON body into req and validates it.
func (h *DAOHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

// pathID parses a UUID path variable or writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
