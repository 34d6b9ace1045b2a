package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingrepo "salonbook/internal/booking/repository"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
)

// Reminder kinds, doubling as the booking document flag fields.
const (
	Kind24h = "reminder_24h_sent"
	Kind2h  = "reminder_2h_sent"
)

type mongoReminderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// ReminderRepository reads and flags confirmed bookings due a reminder.
// It works on the same Bookings collection as the booking repository.
type ReminderRepository interface {
	// FindCandidates returns confirmed bookings on the given dates that
	// still miss at least one reminder flag.
	FindCandidates(ctx context.Context, dates []string) ([]*model.Booking, error)
	// ClaimReminder flips the given flag from false to true. Returns false
	// when the flag was already set, so concurrent scans cannot both claim
	// the same reminder.
	ClaimReminder(ctx context.Context, bookingID, kind string) (bool, error)
	// ReleaseReminder clears the flag again after a failed send.
	ReleaseReminder(ctx context.Context, bookingID, kind string) error
}

func NewMongoReminderRepository(cfg *config.Config) ReminderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReminderRepository{
		cfg:        cfg,
		collection: db.Collection(bookingrepo.CollectionName),
	}
}

func (r *mongoReminderRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReminderRepository) FindCandidates(ctx context.Context, dates []string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status": model.StatusConfirmed,
		"date":   bson.M{"$in": dates},
		"$or": []bson.M{
			{Kind24h: false},
			{Kind2h: false},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode reminder candidates: %w", err)
	}

	return bookings, nil
}

func (r *mongoReminderRepository) ClaimReminder(ctx context.Context, bookingID, kind string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return false, fmt.Errorf("invalid booking ID %q: %w", bookingID, err)
	}

	filter := bson.M{"_id": objectID, kind: false, "status": model.StatusConfirmed}
	update := bson.M{"$set": bson.M{kind: true}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *mongoReminderRepository) ReleaseReminder(ctx context.Context, bookingID, kind string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID %q: %w", bookingID, err)
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{kind: false}})
	if err != nil {
		return fmt.Errorf("failed to release reminder: %w", err)
	}
	return nil
}
