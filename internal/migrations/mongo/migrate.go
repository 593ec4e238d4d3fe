package mongo

import (
	"context"
	"fmt"
	"salonbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingrepository "salonbook/internal/bookings/repository"
	"salonbook/internal/migrations/mongo/validators"
	staffrepository "salonbook/internal/staff/repository"
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the service writes, in creation order.
func Collections() []Collection {
	return []Collection{
		{
			Name: staffrepository.CollectionName,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "updated_at", Value: -1}}},
			},
			Validator: validators.StaffValidator,
		},
		{
			Name: bookingrepository.CollectionName,
			Indexes: []mongo.IndexModel{
				{
					Keys: bson.D{
						{Key: "staff_id", Value: 1},
						{Key: "date", Value: 1},
						{Key: "status", Value: 1},
						{Key: "start_time", Value: 1},
					},
					Options: options.Index().SetName("staff_date_status_start"),
				},
				{
					Keys:    bson.D{{Key: "rescheduled_from", Value: 1}},
					Options: options.Index().SetName("rescheduled_from").SetSparse(true),
				},
			},
			Validator: validators.BookingValidator,
		},
		{
			Name: bookingrepository.LockCollectionName,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "expires_at", Value: 1}},
					Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
				},
			},
			Validator: validators.BookingLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
