package ledger

import (
	"bytes"
	"context"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
)

// RegisterServiceCenter approves center to create records. Only the brand
// authority may call it, and center must not already be registered.
func (l *Ledger) RegisterServiceCenter(ctx context.Context, caller, center models.Account) ([]models.Event, error) {
	return l.setServiceCenter(ctx, caller, center, true)
}

// RemoveServiceCenter revokes center. Only the brand authority may call it,
// and center must currently be registered.
func (l *Ledger) RemoveServiceCenter(ctx context.Context, caller, center models.Account) ([]models.Event, error) {
	return l.setServiceCenter(ctx, caller, center, false)
}

func (l *Ledger) setServiceCenter(ctx context.Context, caller, center models.Account, active bool) ([]models.Event, error) {
	fields := log.Fields{"caller": caller, "service_center": center}

	l.mu.Lock()
	if caller != l.brand {
		l.mu.Unlock()
		l.log.WithFields(fields).Warn("Rejected service center change from non-brand caller")
		return nil, ErrUnauthorized
	}
	if center.IsZero() {
		l.mu.Unlock()
		return nil, ErrInvalidAccount
	}
	_, registered := l.centers[center]
	switch {
	case active && registered:
		l.mu.Unlock()
		return nil, ErrAlreadyRegistered
	case !active && !registered:
		l.mu.Unlock()
		return nil, ErrNotRegistered
	}

	if l.store != nil {
		if err := l.store.SaveServiceCenter(ctx, center, active); err != nil {
			l.mu.Unlock()
			l.log.WithError(err).WithFields(fields).Error("Failed to persist service center")
			return nil, storeErr(err)
		}
	}

	kind := models.EventServiceCenterRegistered
	if active {
		l.centers[center] = struct{}{}
	} else {
		delete(l.centers, center)
		kind = models.EventServiceCenterRemoved
	}
	l.mu.Unlock()

	e := l.newEvent(kind)
	e.Account = &center
	events := []models.Event{e}

	l.log.WithFields(fields).Info(string(kind))
	l.publish(ctx, events)
	return events, nil
}

// IsServiceCenter reports whether center is currently registered.
func (l *Ledger) IsServiceCenter(center models.Account) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.centers[center]
	return ok
}

// ServiceCenters returns the registered centers sorted by account.
func (l *Ledger) ServiceCenters() []models.Account {
	l.mu.RLock()
	out := make([]models.Account, 0, len(l.centers))
	for c := range l.centers {
		out = append(out, c)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
