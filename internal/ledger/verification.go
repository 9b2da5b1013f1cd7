package ledger

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// VerifyByBrand records the brand authority's attestation of record id.
func (l *Ledger) VerifyByBrand(ctx context.Context, id uint64, sig []byte) ([]models.Event, error) {
	return l.verify(ctx, id, signature.RoleBrand, sig)
}

// VerifyByUser records the customer's attestation of record id.
func (l *Ledger) VerifyByUser(ctx context.Context, id uint64, sig []byte) ([]models.Event, error) {
	return l.verify(ctx, id, signature.RoleUser, sig)
}

func (l *Ledger) verify(ctx context.Context, id uint64, role signature.Role, sig []byte) ([]models.Event, error) {
	fields := log.Fields{"record_id": id, "role": role}

	l.mu.Lock()
	rec, err := l.applyVerification(ctx, id, role, sig, fields)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	kind := models.EventBrandVerified
	if role == signature.RoleUser {
		kind = models.EventUserVerified
	}
	e := l.newEvent(kind)
	e.RecordID = &rec.ID
	events := []models.Event{e}
	if rec.Completed {
		done := l.newEvent(models.EventServiceCompleted)
		done.RecordID = &rec.ID
		done.Customer = &rec.Customer
		done.ServiceCenter = &rec.ServiceCenter
		events = append(events, done)
	}

	l.log.WithFields(fields).WithField("completed", rec.Completed).Info(string(kind))
	l.publish(ctx, events)
	return events, nil
}

// applyVerification must be called with the write lock held.
func (l *Ledger) applyVerification(ctx context.Context, id uint64, role signature.Role, sig []byte, fields log.Fields) (models.ServiceRecord, error) {
	if id >= uint64(len(l.records)) {
		return models.ServiceRecord{}, ErrRecordNotFound
	}
	rec := l.records[id].Clone()

	expected := l.brand
	verified := rec.VerifiedByBrand
	if role == signature.RoleUser {
		expected = rec.Customer
		verified = rec.VerifiedByUser
	}
	if verified {
		return models.ServiceRecord{}, ErrAlreadyVerified
	}

	ok, err := l.verifier.Verify(expected, id, role, sig)
	if err != nil {
		l.log.WithError(err).WithFields(fields).Info("Malformed verification signature")
		if errors.Is(err, ErrInvalidSignatureFormat) {
			return models.ServiceRecord{}, err
		}
		return models.ServiceRecord{}, fmt.Errorf("verify signature: %w", err)
	}
	if !ok {
		l.log.WithFields(fields).WithField("expected_signer", expected).Warn("Verification signature from wrong signer")
		return models.ServiceRecord{}, ErrSignatureMismatch
	}

	stored := make([]byte, len(sig))
	copy(stored, sig)
	if role == signature.RoleBrand {
		rec.VerifiedByBrand = true
		rec.BrandSignature = stored
	} else {
		rec.VerifiedByUser = true
		rec.CustomerSignature = stored
	}
	rec.Completed = rec.VerifiedByBrand && rec.VerifiedByUser

	if l.store != nil {
		if err := l.store.UpdateVerification(ctx, rec, role); err != nil {
			l.log.WithError(err).WithFields(fields).Error("Failed to persist verification")
			return models.ServiceRecord{}, storeErr(err)
		}
	}
	l.records[id] = rec
	return rec.Clone(), nil
}
