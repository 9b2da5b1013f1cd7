// Package events delivers ledger events to external observers.
package events

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
)

// Sink receives committed events.
type Sink interface {
	Publish(ctx context.Context, event models.Event) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

// Publish implements Sink.
func (m Multi) Publish(ctx context.Context, event models.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to a logrus logger.
type LogSink struct {
	Logger *log.Entry
}

// NewLogSink creates a sink logging through logger, or the standard logger if nil.
func NewLogSink(logger *log.Entry) *LogSink {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &LogSink{Logger: logger}
}

// Publish implements Sink.
func (s *LogSink) Publish(_ context.Context, event models.Event) error {
	s.Logger.WithFields(Fields(event)).Info("Ledger event")
	return nil
}

// Fields flattens an event into log fields.
func Fields(event models.Event) log.Fields {
	f := log.Fields{
		"event_id": event.ID,
		"kind":     event.Kind,
	}
	if event.RecordID != nil {
		f["record_id"] = *event.RecordID
	}
	if event.Account != nil {
		f["account"] = event.Account.String()
	}
	if event.Customer != nil {
		f["customer"] = event.Customer.String()
	}
	if event.ServiceCenter != nil {
		f["service_center"] = event.ServiceCenter.String()
	}
	return f
}
