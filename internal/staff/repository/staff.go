package repository

import (
	"context"
	"errors"
	"fmt"
	stafferrors "salonbook/internal/staff/errors"
	"salonbook/pkg/config"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Staff"
)

// StaffRepository persists the latest snapshot of each staff member.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*model.Staff, error)
	// Upsert replaces the stored snapshot. A snapshot older than the stored one is ignored
	// and reported with applied=false.
	Upsert(ctx context.Context, staff *model.Staff) (applied bool, err error)
	Delete(ctx context.Context, id string) error
}

type mongoStaffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffRepository(cfg *config.Config) StaffRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStaffRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoStaffRepository) FindByID(ctx context.Context, id string) (*model.Staff, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var staff model.Staff
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&staff)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", stafferrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}
	return &staff, nil
}

func (r *mongoStaffRepository) Upsert(ctx context.Context, staff *model.Staff) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	// Matching only older snapshots turns a stale replay into a duplicate-key insert attempt.
	filter := bson.M{"_id": staff.ID, "updated_at": bson.M{"$lte": staff.UpdatedAt}}
	_, err := r.collection.ReplaceOne(ctx, filter, staff, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to upsert staff: %w", err)
	}
	return true, nil
}

func (r *mongoStaffRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", stafferrors.ErrNotFound, id)
	}
	return nil
}
