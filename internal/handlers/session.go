package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/models"
)

// SessionHandler exchanges signed wallet sign-ins for session tokens
type SessionHandler struct {
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *auth.Service) *SessionHandler {
	return &SessionHandler{authService: authService}
}

// CreateSession handles wallet sign-in
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req models.SessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Account == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "Account and signature are required")
		return
	}

	account, err := h.authService.VerifySignIn(req)
	if err != nil {
		log.WithError(err).WithField("account", req.Account).Info("Rejected sign-in")
		writeLedgerError(w, err)
		return
	}

	token, exp, err := h.authService.GenerateToken(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, models.SessionResponse{
		Token:     token,
		Account:   account,
		ExpiresAt: exp,
	})
}
