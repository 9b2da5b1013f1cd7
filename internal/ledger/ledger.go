// Package ledger implements the service record workflow: the registry of
// service centers, the append-only record arena and the brand/owner
// verification state machine.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// Config configures a Ledger.
type Config struct {
	// Brand is the brand authority, fixed for the life of the ledger.
	Brand models.Account
	// Domain is bound into every signed message. Ignored when Verifier is set.
	Domain   string
	Verifier SignatureVerifier
	Store    Store
	Sink     EventSink
	Logger   *log.Entry
}

// Ledger is safe for concurrent use. Mutations are serialized by a single
// write lock and each re-checks its precondition under that lock.
type Ledger struct {
	brand    models.Account
	verifier SignatureVerifier
	store    Store
	sink     EventSink
	log      *log.Entry
	now      func() time.Time

	mu      sync.RWMutex
	centers map[models.Account]struct{}
	records []models.ServiceRecord
}

// New creates an empty ledger.
func New(cfg Config) (*Ledger, error) {
	if cfg.Brand.IsZero() {
		return nil, fmt.Errorf("brand authority: %w", ErrInvalidAccount)
	}
	l := &Ledger{
		brand:    cfg.Brand,
		verifier: cfg.Verifier,
		store:    cfg.Store,
		sink:     cfg.Sink,
		log:      cfg.Logger,
		now:      time.Now,
		centers:  make(map[models.Account]struct{}),
	}
	if l.verifier == nil {
		l.verifier = signature.NewVerifier(cfg.Domain)
	}
	if l.log == nil {
		l.log = log.WithField("component", "ledger")
	}
	return l, nil
}

// Open creates a ledger and restores its state from cfg.Store.
func Open(ctx context.Context, cfg Config) (*Ledger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if l.store == nil {
		return l, nil
	}

	centers, err := l.store.LoadServiceCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load service centers: %v", ErrStore, err)
	}
	records, err := l.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load records: %v", ErrStore, err)
	}

	for _, c := range centers {
		l.centers[c] = struct{}{}
	}
	for i, r := range records {
		if r.ID != uint64(i) {
			return nil, fmt.Errorf("%w: record ids not contiguous: got %d at position %d", ErrStore, r.ID, i)
		}
		r.Completed = r.VerifiedByBrand && r.VerifiedByUser
		l.records = append(l.records, r)
	}

	l.log.WithFields(log.Fields{
		"service_centers": len(l.centers),
		"records":         len(l.records),
	}).Info("Restored ledger state")
	return l, nil
}

// Brand returns the brand authority.
func (l *Ledger) Brand() models.Account {
	return l.brand
}

func (l *Ledger) newEvent(kind models.EventKind) models.Event {
	return models.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: l.now().UTC(),
	}
}

// publish hands committed events to the sink. Failures are logged only: the
// state change has already happened, so a cancelled caller must not stop it.
func (l *Ledger) publish(ctx context.Context, events []models.Event) {
	if l.sink == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		if err := l.sink.Publish(ctx, e); err != nil {
			l.log.WithError(err).WithFields(log.Fields{
				"event_id": e.ID,
				"kind":     e.Kind,
			}).Error("Failed to publish event")
		}
	}
}

func storeErr(err error) error {
	if errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
