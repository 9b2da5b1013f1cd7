package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	RecordsCollection        = "records"
	ServiceCentersCollection = "service_centers"
	EventsCollection         = "events"
)

var (
	ErrNilCollection        = errors.New("mongo collection is nil")
	ErrVerificationConflict = errors.New("record missing or already verified in store")
)

// MongoStore persists ledger state in MongoDB.
type MongoStore struct {
	Records        *mongo.Collection
	ServiceCenters *mongo.Collection
}

// NewMongoStore creates a store over the standard collections of database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		Records:        database.Collection(RecordsCollection),
		ServiceCenters: database.Collection(ServiceCentersCollection),
	}
}

func (s *MongoStore) check() error {
	if s.Records == nil || s.ServiceCenters == nil {
		return ErrNilCollection
	}
	return nil
}

// LoadServiceCenters returns all active service centers.
func (s *MongoStore) LoadServiceCenters(ctx context.Context) ([]models.Account, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	cursor, err := s.ServiceCenters.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	var docs []centerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	centers := make([]models.Account, 0, len(docs))
	for _, d := range docs {
		a, err := models.ParseAccount(d.Account)
		if err != nil {
			return nil, fmt.Errorf("service center %q: %w", d.Account, err)
		}
		centers = append(centers, a)
	}
	return centers, nil
}

// LoadRecords returns all records sorted by id.
func (s *MongoStore) LoadRecords(ctx context.Context) ([]models.ServiceRecord, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.Records.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []recordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]models.ServiceRecord, 0, len(docs))
	for _, d := range docs {
		r, err := d.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// SaveServiceCenter upserts the active flag of center.
func (s *MongoStore) SaveServiceCenter(ctx context.Context, center models.Account, active bool) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.ServiceCenters.UpdateOne(ctx,
		bson.M{"_id": center.String()},
		bson.M{"$set": bson.M{"active": active, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// InsertRecord inserts a new record. A duplicate id fails.
func (s *MongoStore) InsertRecord(ctx context.Context, record models.ServiceRecord) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.Records.InsertOne(ctx, newRecordDocument(record))
	return err
}

// UpdateVerification sets the role's flag and signature, guarded on the flag
// still being false in the stored document.
func (s *MongoStore) UpdateVerification(ctx context.Context, record models.ServiceRecord, role signature.Role) error {
	if err := s.check(); err != nil {
		return err
	}
	filter, set := verificationUpdate(record, role)
	result, err := s.Records.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("record %d: %w", record.ID, ErrVerificationConflict)
	}
	return nil
}

func verificationUpdate(record models.ServiceRecord, role signature.Role) (bson.M, bson.M) {
	flag, sigField, sig := "verified_by_brand", "brand_signature", record.BrandSignature
	if role == signature.RoleUser {
		flag, sigField, sig = "verified_by_user", "customer_signature", record.CustomerSignature
	}
	filter := bson.M{"_id": int64(record.ID), flag: false}
	set := bson.M{
		flag:        true,
		sigField:    sig,
		"completed": record.Completed,
	}
	return filter, set
}

// EnsureIndexes creates the indexes used by the journal queries.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(EventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "record_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create events index: %w", err)
	}
	_, err = database.Collection(RecordsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "completed", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create records index: %w", err)
	}
	return nil
}
