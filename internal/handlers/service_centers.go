package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ukydev/service-ledger/internal/middleware"
	"github.com/ukydev/service-ledger/internal/models"
)

// ServiceCenterHandler serves the service center registry
type ServiceCenterHandler struct {
	ledger Ledger
}

// NewServiceCenterHandler creates a new service center handler
func NewServiceCenterHandler(l Ledger) *ServiceCenterHandler {
	return &ServiceCenterHandler{ledger: l}
}

type serviceCenterRequest struct {
	Account string `json:"account"`
}

type serviceCenterStatus struct {
	Account         models.Account `json:"account"`
	IsServiceCenter bool           `json:"is_service_center"`
}

// Brand returns the brand authority account
func (h *ServiceCenterHandler) Brand(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]models.Account{"brand": h.ledger.Brand()})
}

// List returns every registered service center
func (h *ServiceCenterHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.Account{
		"service_centers": h.ledger.ServiceCenters(),
	})
}

// Get reports whether the account in the path is a registered service center
func (h *ServiceCenterHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := models.ParseAccount(mux.Vars(r)["account"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account")
		return
	}
	writeJSON(w, http.StatusOK, serviceCenterStatus{
		Account:         account,
		IsServiceCenter: h.ledger.IsServiceCenter(account),
	})
}

// Register approves a service center. The caller must be the brand authority.
func (h *ServiceCenterHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Session not found")
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req serviceCenterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	center, err := models.ParseAccount(req.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account")
		return
	}

	events, err := h.ledger.RegisterServiceCenter(r.Context(), caller, center)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventsResponse{Events: events})
}

// Remove revokes the service center in the path. The caller must be the
// brand authority.
func (h *ServiceCenterHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Session not found")
		return
	}

	center, err := models.ParseAccount(mux.Vars(r)["account"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account")
		return
	}

	events, err := h.ledger.RemoveServiceCenter(r.Context(), caller, center)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}
