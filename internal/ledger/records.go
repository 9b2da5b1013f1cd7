package ledger

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
)

// CreateRecord appends a service record for customer. The caller must be a
// registered service center and parts must hold exactly five entries; empty
// entries are allowed.
func (l *Ledger) CreateRecord(ctx context.Context, caller, customer models.Account, details string, parts []string) (models.ServiceRecord, []models.Event, error) {
	l.mu.Lock()
	if _, ok := l.centers[caller]; !ok {
		l.mu.Unlock()
		l.log.WithField("caller", caller).Warn("Rejected record from unregistered service center")
		return models.ServiceRecord{}, nil, ErrNotAuthorizedCenter
	}
	if len(parts) != models.PartsPerRecord {
		l.mu.Unlock()
		return models.ServiceRecord{}, nil, fmt.Errorf("%w: got %d", ErrInvalidPartsCount, len(parts))
	}
	if customer.IsZero() {
		l.mu.Unlock()
		return models.ServiceRecord{}, nil, fmt.Errorf("customer: %w", ErrInvalidAccount)
	}

	rec := models.ServiceRecord{
		ID:             uint64(len(l.records)),
		Customer:       customer,
		ServiceCenter:  caller,
		ServiceDetails: details,
		CreatedAt:      l.now().UTC(),
	}
	copy(rec.Parts[:], parts)

	if l.store != nil {
		if err := l.store.InsertRecord(ctx, rec); err != nil {
			l.mu.Unlock()
			l.log.WithError(err).WithField("record_id", rec.ID).Error("Failed to persist record")
			return models.ServiceRecord{}, nil, storeErr(err)
		}
	}
	l.records = append(l.records, rec)
	l.mu.Unlock()

	e := l.newEvent(models.EventServiceRecorded)
	e.RecordID = &rec.ID
	e.Customer = &rec.Customer
	e.ServiceCenter = &rec.ServiceCenter
	events := []models.Event{e}

	l.log.WithFields(log.Fields{
		"record_id":      rec.ID,
		"customer":       customer,
		"service_center": caller,
	}).Info("Service recorded")
	l.publish(ctx, events)
	return rec, events, nil
}

// GetRecord returns a copy of record id.
func (l *Ledger) GetRecord(id uint64) (models.ServiceRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if id >= uint64(len(l.records)) {
		return models.ServiceRecord{}, ErrRecordNotFound
	}
	return l.records[id].Clone(), nil
}

// RecordCount returns the number of records, which is also the next id.
func (l *Ledger) RecordCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.records))
}

// GetUnverifiedRecords returns the ids of records not yet completed, in
// ascending order.
func (l *Ledger) GetUnverifiedRecords() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]uint64, 0)
	for _, r := range l.records {
		if !r.Completed {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// VerifyPartsAuthenticity reports whether partID is one of the record's
// parts. It is a case-sensitive exact match.
func (l *Ledger) VerifyPartsAuthenticity(id uint64, partID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if id >= uint64(len(l.records)) {
		return false, ErrRecordNotFound
	}
	return l.records[id].HasPart(partID), nil
}
