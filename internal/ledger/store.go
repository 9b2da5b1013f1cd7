package ledger

import (
	"context"

	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// Store persists committed ledger state. The ledger writes through it while
// holding its write lock, so implementations see one writer at a time.
type Store interface {
	LoadServiceCenters(ctx context.Context) ([]models.Account, error)
	// LoadRecords returns all records in ascending id order.
	LoadRecords(ctx context.Context) ([]models.ServiceRecord, error)
	SaveServiceCenter(ctx context.Context, center models.Account, active bool) error
	InsertRecord(ctx context.Context, record models.ServiceRecord) error
	// UpdateVerification stores the flag and signature for role, and the
	// completed flag, only if role was not yet verified.
	UpdateVerification(ctx context.Context, record models.ServiceRecord, role signature.Role) error
}

// EventSink receives events after their state change has been committed.
type EventSink interface {
	Publish(ctx context.Context, event models.Event) error
}

// SignatureVerifier checks that sig is expected's signature for (recordID, role).
type SignatureVerifier interface {
	Verify(expected models.Account, recordID uint64, role signature.Role, sig []byte) (bool, error)
}
