package models

import (
	"time"
)

// PartsPerRecord is the fixed number of part slots on a service record.
const PartsPerRecord = 5

// RecordStatus is the verification state of a service record.
type RecordStatus string

const (
	StatusCreated       RecordStatus = "created"
	StatusBrandVerified RecordStatus = "brand_verified"
	StatusUserVerified  RecordStatus = "user_verified"
	StatusCompleted     RecordStatus = "completed"
)

// ServiceRecord is one service event awaiting or holding the brand and owner
// attestations.
type ServiceRecord struct {
	ID                uint64                 `json:"id"`
	Customer          Account                `json:"customer"`
	ServiceCenter     Account                `json:"service_center"`
	ServiceDetails    string                 `json:"service_details"`
	Parts             [PartsPerRecord]string `json:"parts"`
	VerifiedByBrand   bool                   `json:"verified_by_brand"`
	VerifiedByUser    bool                   `json:"verified_by_user"`
	Completed         bool                   `json:"completed"`
	BrandSignature    []byte                 `json:"brand_signature,omitempty"`
	CustomerSignature []byte                 `json:"customer_signature,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// Status derives the state from the two verification flags.
func (r *ServiceRecord) Status() RecordStatus {
	switch {
	case r.VerifiedByBrand && r.VerifiedByUser:
		return StatusCompleted
	case r.VerifiedByBrand:
		return StatusBrandVerified
	case r.VerifiedByUser:
		return StatusUserVerified
	default:
		return StatusCreated
	}
}

// HasPart reports whether partID exactly matches one of the stored parts.
// The empty string never matches.
func (r *ServiceRecord) HasPart(partID string) bool {
	if partID == "" {
		return false
	}
	for _, p := range r.Parts {
		if p == partID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r ServiceRecord) Clone() ServiceRecord {
	r.BrandSignature = cloneBytes(r.BrandSignature)
	r.CustomerSignature = cloneBytes(r.CustomerSignature)
	return r
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
