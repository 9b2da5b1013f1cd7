package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/middleware"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// RecordHandler serves service records and their verification
type RecordHandler struct {
	ledger  Ledger
	journal EventJournal
}

// NewRecordHandler creates a new record handler. journal may be nil.
func NewRecordHandler(l Ledger, journal EventJournal) *RecordHandler {
	return &RecordHandler{ledger: l, journal: journal}
}

type createRecordRequest struct {
	Customer       string   `json:"customer"`
	ServiceDetails string   `json:"service_details"`
	Parts          []string `json:"parts"`
}

type createRecordResponse struct {
	Record recordResponse `json:"record"`
	Events []models.Event `json:"events"`
}

type verifyRequest struct {
	Signature string `json:"signature"`
}

type partsResponse struct {
	RecordID  uint64 `json:"record_id"`
	PartID    string `json:"part_id"`
	Authentic bool   `json:"authentic"`
}

// Create appends a service record. The caller must be a registered service center.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Session not found")
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req createRecordRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// An empty customer is left to the ledger so that authorization is
	// reported before input problems.
	var customer models.Account
	if req.Customer != "" {
		parsed, err := models.ParseAccount(req.Customer)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid customer account")
			return
		}
		customer = parsed
	}

	rec, events, err := h.ledger.CreateRecord(r.Context(), caller, customer, req.ServiceDetails, req.Parts)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRecordResponse{
		Record: newRecordResponse(rec),
		Events: events,
	})
}

// Get returns one record
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.ledger.GetRecord(id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecordResponse(rec))
}

// Count returns the number of records
func (h *RecordHandler) Count(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"count": h.ledger.RecordCount()})
}

// Unverified returns the ids of records that are not completed
func (h *RecordHandler) Unverified(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]uint64{"record_ids": h.ledger.GetUnverifiedRecords()})
}

// VerifyByBrand submits the brand authority's signature for a record
func (h *RecordHandler) VerifyByBrand(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.ledger.VerifyByBrand)
}

// VerifyByUser submits the customer's signature for a record
func (h *RecordHandler) VerifyByUser(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.ledger.VerifyByUser)
}

type verifyFunc func(ctx context.Context, id uint64, sig []byte) ([]models.Event, error)

func (h *RecordHandler) verify(w http.ResponseWriter, r *http.Request, fn verifyFunc) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req verifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Signature == "" {
		writeError(w, http.StatusBadRequest, "Signature is required")
		return
	}

	sig, err := signature.DecodeHex(req.Signature)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	events, err := fn(r.Context(), id, sig)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

// Parts reports whether the part id in the "part" query parameter belongs
// to a record. Part ids are free text, so they are not taken from the path.
func (h *RecordHandler) Parts(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	part := r.URL.Query().Get("part")

	authentic, err := h.ledger.VerifyPartsAuthenticity(id, part)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partsResponse{RecordID: id, PartID: part, Authentic: authentic})
}

// Events returns the journaled events of a record
func (h *RecordHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotImplemented, "Event journal not configured")
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if _, err := h.ledger.GetRecord(id); err != nil {
		writeLedgerError(w, err)
		return
	}

	events, err := h.journal.FindByRecord(r.Context(), id)
	if err != nil {
		log.WithError(err).WithField("record_id", id).Error("Failed to read event journal")
		writeError(w, http.StatusInternalServerError, "Failed to read events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func recordID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record id")
		return 0, false
	}
	return id, true
}
