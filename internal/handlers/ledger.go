package handlers

import (
	"context"

	"github.com/ukydev/service-ledger/internal/models"
)

// Ledger is the workflow the HTTP surface drives. *ledger.Ledger implements it.
type Ledger interface {
	Brand() models.Account
	RegisterServiceCenter(ctx context.Context, caller, center models.Account) ([]models.Event, error)
	RemoveServiceCenter(ctx context.Context, caller, center models.Account) ([]models.Event, error)
	IsServiceCenter(center models.Account) bool
	ServiceCenters() []models.Account
	CreateRecord(ctx context.Context, caller, customer models.Account, details string, parts []string) (models.ServiceRecord, []models.Event, error)
	GetRecord(id uint64) (models.ServiceRecord, error)
	RecordCount() uint64
	GetUnverifiedRecords() []uint64
	VerifyByBrand(ctx context.Context, id uint64, sig []byte) ([]models.Event, error)
	VerifyByUser(ctx context.Context, id uint64, sig []byte) ([]models.Event, error)
	VerifyPartsAuthenticity(id uint64, partID string) (bool, error)
}

// EventJournal looks up the audit trail of a record.
type EventJournal interface {
	FindByRecord(ctx context.Context, recordID uint64) ([]models.Event, error)
}
