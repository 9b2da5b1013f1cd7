package db

import (
	"fmt"
	"time"

	"github.com/ukydev/service-ledger/internal/models"
)

// recordDocument is the stored form of a service record.
type recordDocument struct {
	ID                int64     `bson:"_id"`
	Customer          string    `bson:"customer"`
	ServiceCenter     string    `bson:"service_center"`
	ServiceDetails    string    `bson:"service_details"`
	Parts             []string  `bson:"parts"`
	VerifiedByBrand   bool      `bson:"verified_by_brand"`
	VerifiedByUser    bool      `bson:"verified_by_user"`
	Completed         bool      `bson:"completed"`
	BrandSignature    []byte    `bson:"brand_signature,omitempty"`
	CustomerSignature []byte    `bson:"customer_signature,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

// centerDocument tracks one service center; removed centers stay with active=false.
type centerDocument struct {
	Account   string    `bson:"_id"`
	Active    bool      `bson:"active"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// eventDocument is the journal form of an event.
type eventDocument struct {
	ID            string    `bson:"_id"`
	Kind          string    `bson:"kind"`
	RecordID      *int64    `bson:"record_id,omitempty"`
	Account       string    `bson:"account,omitempty"`
	Customer      string    `bson:"customer,omitempty"`
	ServiceCenter string    `bson:"service_center,omitempty"`
	Timestamp     time.Time `bson:"timestamp"`
}

func newRecordDocument(r models.ServiceRecord) recordDocument {
	return recordDocument{
		ID:                int64(r.ID),
		Customer:          r.Customer.String(),
		ServiceCenter:     r.ServiceCenter.String(),
		ServiceDetails:    r.ServiceDetails,
		Parts:             append([]string(nil), r.Parts[:]...),
		VerifiedByBrand:   r.VerifiedByBrand,
		VerifiedByUser:    r.VerifiedByUser,
		Completed:         r.Completed,
		BrandSignature:    r.BrandSignature,
		CustomerSignature: r.CustomerSignature,
		CreatedAt:         r.CreatedAt,
	}
}

func (d recordDocument) toModel() (models.ServiceRecord, error) {
	customer, err := models.ParseAccount(d.Customer)
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("record %d customer: %w", d.ID, err)
	}
	center, err := models.ParseAccount(d.ServiceCenter)
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("record %d service center: %w", d.ID, err)
	}
	if len(d.Parts) != models.PartsPerRecord {
		return models.ServiceRecord{}, fmt.Errorf("record %d has %d parts", d.ID, len(d.Parts))
	}
	r := models.ServiceRecord{
		ID:                uint64(d.ID),
		Customer:          customer,
		ServiceCenter:     center,
		ServiceDetails:    d.ServiceDetails,
		VerifiedByBrand:   d.VerifiedByBrand,
		VerifiedByUser:    d.VerifiedByUser,
		Completed:         d.Completed,
		BrandSignature:    d.BrandSignature,
		CustomerSignature: d.CustomerSignature,
		CreatedAt:         d.CreatedAt,
	}
	copy(r.Parts[:], d.Parts)
	return r, nil
}

func newEventDocument(e models.Event) eventDocument {
	d := eventDocument{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Timestamp: e.Timestamp,
	}
	if e.RecordID != nil {
		id := int64(*e.RecordID)
		d.RecordID = &id
	}
	if e.Account != nil {
		d.Account = e.Account.String()
	}
	if e.Customer != nil {
		d.Customer = e.Customer.String()
	}
	if e.ServiceCenter != nil {
		d.ServiceCenter = e.ServiceCenter.String()
	}
	return d
}

func (d eventDocument) toModel() (models.Event, error) {
	e := models.Event{
		ID:        d.ID,
		Kind:      models.EventKind(d.Kind),
		Timestamp: d.Timestamp,
	}
	if d.RecordID != nil {
		id := uint64(*d.RecordID)
		e.RecordID = &id
	}
	for _, f := range []struct {
		src string
		dst **models.Account
	}{
		{d.Account, &e.Account},
		{d.Customer, &e.Customer},
		{d.ServiceCenter, &e.ServiceCenter},
	} {
		if f.src == "" {
			continue
		}
		a, err := models.ParseAccount(f.src)
		if err != nil {
			return models.Event{}, fmt.Errorf("event %s: %w", d.ID, err)
		}
		*f.dst = &a
	}
	return e, nil
}
