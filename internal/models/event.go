package models

import (
	"time"
)

// EventKind names an event emitted by the ledger.
type EventKind string

const (
	EventServiceCenterRegistered EventKind = "ServiceCenterRegistered"
	EventServiceCenterRemoved    EventKind = "ServiceCenterRemoved"
	EventServiceRecorded         EventKind = "ServiceRecorded"
	EventBrandVerified           EventKind = "BrandVerified"
	EventUserVerified            EventKind = "UserVerified"
	EventServiceCompleted        EventKind = "ServiceCompleted"
)

// Event is emitted for every committed state change.
type Event struct {
	ID            string    `json:"id"`
	Kind          EventKind `json:"kind"`
	RecordID      *uint64   `json:"record_id,omitempty"`
	Account       *Account  `json:"account,omitempty"`
	Customer      *Account  `json:"customer,omitempty"`
	ServiceCenter *Account  `json:"service_center,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
