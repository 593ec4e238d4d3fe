package repository

import (
	"context"
	"fmt"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// MongoLockStore keeps advisory locks as documents keyed by lock name. The unique _id makes a
// second insert fail with a duplicate key error while the first holder is alive.
type MongoLockStore struct {
	collection *mongo.Collection
}

func NewMongoLockStore(cfg *config.Config) *MongoLockStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &MongoLockStore{
		collection: db.Collection(LockCollectionName),
	}
}

func (s *MongoLockStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	lock := &model.BookingLock{
		ID:        key,
		Owner:     owner,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.collection.InsertOne(ctx, lock)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to insert lock: %w", err)
	}

	// The TTL monitor only sweeps about once a minute, so clear an expired holder ourselves.
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, fmt.Errorf("failed to clear expired lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}

	if _, err := s.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert lock: %w", err)
	}
	return true, nil
}

func (s *MongoLockStore) Release(ctx context.Context, key, owner string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	return err
}
