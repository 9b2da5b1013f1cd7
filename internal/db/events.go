package db

import (
	"context"

	"github.com/ukydev/service-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEventJournal keeps an audit trail of ledger events.
type MongoEventJournal struct {
	Collection *mongo.Collection
}

// NewMongoEventJournal creates a journal over the events collection of database.
func NewMongoEventJournal(database *mongo.Database) *MongoEventJournal {
	return &MongoEventJournal{Collection: database.Collection(EventsCollection)}
}

// Publish appends event to the journal.
func (j *MongoEventJournal) Publish(ctx context.Context, event models.Event) error {
	if j.Collection == nil {
		return ErrNilCollection
	}
	_, err := j.Collection.InsertOne(ctx, newEventDocument(event))
	return err
}

// FindByRecord returns the events of one record in commit order.
func (j *MongoEventJournal) FindByRecord(ctx context.Context, recordID uint64) ([]models.Event, error) {
	if j.Collection == nil {
		return nil, ErrNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := j.Collection.Find(ctx, bson.M{"record_id": int64(recordID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		e, err := d.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
