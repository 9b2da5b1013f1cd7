package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/ledger"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// maxBodyBytes caps the size of a request body.
const maxBodyBytes = 1 << 20

// readBody reads a size-capped request body and writes the error response
// itself when it fails.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeLedgerError maps ledger and auth errors to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized), errors.Is(err, ledger.ErrNotAuthorizedCenter):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrAlreadyRegistered), errors.Is(err, ledger.ErrAlreadyVerified):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotRegistered), errors.Is(err, ledger.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrSignatureMismatch),
		errors.Is(err, auth.ErrInvalidSignIn), errors.Is(err, auth.ErrStaleSignIn):
		return http.StatusUnauthorized
	case errors.Is(err, signature.ErrInvalidFormat),
		errors.Is(err, ledger.ErrInvalidPartsCount),
		errors.Is(err, models.ErrInvalidAccount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// recordResponse renders a record with hex signatures and its derived status.
type recordResponse struct {
	ID                uint64              `json:"id"`
	Customer          models.Account      `json:"customer"`
	ServiceCenter     models.Account      `json:"service_center"`
	ServiceDetails    string              `json:"service_details"`
	Parts             []string            `json:"parts"`
	VerifiedByBrand   bool                `json:"verified_by_brand"`
	VerifiedByUser    bool                `json:"verified_by_user"`
	Completed         bool                `json:"completed"`
	Status            models.RecordStatus `json:"status"`
	BrandSignature    string              `json:"brand_signature,omitempty"`
	CustomerSignature string              `json:"customer_signature,omitempty"`
	CreatedAt         string              `json:"created_at"`
}

func newRecordResponse(r models.ServiceRecord) recordResponse {
	resp := recordResponse{
		ID:              r.ID,
		Customer:        r.Customer,
		ServiceCenter:   r.ServiceCenter,
		ServiceDetails:  r.ServiceDetails,
		Parts:           append([]string(nil), r.Parts[:]...),
		VerifiedByBrand: r.VerifiedByBrand,
		VerifiedByUser:  r.VerifiedByUser,
		Completed:       r.Completed,
		Status:          r.Status(),
		CreatedAt:       r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(r.BrandSignature) > 0 {
		resp.BrandSignature = signature.EncodeHex(r.BrandSignature)
	}
	if len(r.CustomerSignature) > 0 {
		resp.CustomerSignature = signature.EncodeHex(r.CustomerSignature)
	}
	return resp
}

type eventsResponse struct {
	Events []models.Event `json:"events"`
}
