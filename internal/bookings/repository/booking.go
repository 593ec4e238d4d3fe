package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/pkg/config"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// BookingRepository stores bookings. Bookings are never deleted; cancellation is a status change.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindByStaffAndDate returns bookings ordered by start time. An empty status matches all.
	FindByStaffAndDate(ctx context.Context, staffID string, date model.Date, status model.BookingStatus) ([]*model.Booking, error)
	FindConfirmedByStaffAndDate(ctx context.Context, staffID string, date model.Date) ([]*model.Booking, error)
	// Cancel moves a confirmed booking to cancelled and returns the updated record.
	Cancel(ctx context.Context, id string, c model.Cancellation) (*model.Booking, error)
	// Replace inserts replacement and cancels the booking with oldID in one atomic step.
	Replace(ctx context.Context, oldID string, replacement *model.Booking, at time.Time) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, mongotx.WithMaxCommitTime(cfg.WriteTimeout)),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindConfirmedByStaffAndDate(ctx context.Context, staffID string, date model.Date) ([]*model.Booking, error) {
	return r.FindByStaffAndDate(ctx, staffID, date, model.BookingConfirmed)
}

func (r *mongoBookingRepository) FindByStaffAndDate(ctx context.Context, staffID string, date model.Date, status model.BookingStatus) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"staff_id": staffID,
		"date":     date,
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Cancel(ctx context.Context, id string, c model.Cancellation) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var probe model.Booking
	probe.Status = model.BookingConfirmed
	c.Apply(&probe)

	filter := bson.M{"_id": id, "status": model.BookingConfirmed}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, cancellationUpdate(&probe), opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	// nothing matched: tell a missing booking from one that was already cancelled
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, bookingserrors.ErrAlreadyCancelled
}

func (r *mongoBookingRepository) Replace(ctx context.Context, oldID string, replacement *model.Booking, at time.Time) error {
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sessCtx, replacement); err != nil {
			return fmt.Errorf("failed to insert replacement booking: %w", err)
		}

		var probe model.Booking
		model.Cancellation{At: at, RescheduledTo: replacement.ID}.Apply(&probe)

		res, err := r.collection.UpdateOne(sessCtx,
			bson.M{"_id": oldID, "status": model.BookingConfirmed},
			cancellationUpdate(&probe),
		)
		if err != nil {
			return fmt.Errorf("failed to cancel rescheduled booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return bookingserrors.ErrAlreadyCancelled
		}
		return nil
	})
}

func cancellationUpdate(cancelled *model.Booking) bson.M {
	set := bson.M{
		"status":       cancelled.Status,
		"cancelled_at": cancelled.CancelledAt,
	}
	if cancelled.CancellationReason != "" {
		set["cancellation_reason"] = cancelled.CancellationReason
	}
	if cancelled.RescheduledTo != "" {
		set["rescheduled_to"] = cancelled.RescheduledTo
	}
	if cancelled.RefundAmount != nil {
		set["refund_amount"] = *cancelled.RefundAmount
		set["refund_percent"] = *cancelled.RefundPercent
	}
	return bson.M{"$set": set}
}
