package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	scheduleerrors "salonbook/internal/schedule/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
)

const (
	CollectionName = "Shifts"
)

type mongoShiftRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type ShiftRepository interface {
	// Upsert writes the shift for (master, date), creating it when absent.
	// Returns true when a new document was created.
	Upsert(ctx context.Context, shift *model.Shift) (bool, error)
	FindByMasterAndDate(ctx context.Context, masterID, date string) (*model.Shift, error)
	FindByMaster(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error)
	FindByDate(ctx context.Context, date string) ([]*model.Shift, error)
	Deactivate(ctx context.Context, masterID, date string) error
}

func NewMongoShiftRepository(cfg *config.Config) ShiftRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoShiftRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoShiftRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoShiftRepository) Upsert(ctx context.Context, shift *model.Shift) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"master_id": shift.MasterID, "date": shift.Date}
	update := bson.M{
		"$set": bson.M{
			"start_time": shift.StartTime,
			"end_time":   shift.EndTime,
			"is_active":  true,
		},
		"$setOnInsert": bson.M{
			"master_id":  shift.MasterID,
			"date":       shift.Date,
			"created_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert shift: %w", err)
	}

	return result.UpsertedCount > 0, nil
}

func (r *mongoShiftRepository) FindByMasterAndDate(ctx context.Context, masterID, date string) (*model.Shift, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"master_id": masterID, "date": date}

	var shift model.Shift
	err := r.collection.FindOne(ctx, filter).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: master %s on %s", scheduleerrors.ErrNotFound, masterID, date)
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}

	return &shift, nil
}

func (r *mongoShiftRepository) FindByMaster(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error) {
	filter := bson.M{"master_id": masterID}
	dateRange := bson.M{}
	if fromDate != "" {
		dateRange["$gte"] = fromDate
	}
	if toDate != "" {
		dateRange["$lte"] = toDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	return r.findShifts(ctx, filter)
}

func (r *mongoShiftRepository) FindByDate(ctx context.Context, date string) ([]*model.Shift, error) {
	return r.findShifts(ctx, bson.M{"date": date})
}

func (r *mongoShiftRepository) findShifts(ctx context.Context, filter bson.M) ([]*model.Shift, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "master_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find shifts: %w", err)
	}
	defer cursor.Close(ctx)

	var shifts []*model.Shift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("failed to decode shifts: %w", err)
	}

	return shifts, nil
}

func (r *mongoShiftRepository) Deactivate(ctx context.Context, masterID, date string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"master_id": masterID, "date": date}
	update := bson.M{"$set": bson.M{"is_active": false}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate shift: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: master %s on %s", scheduleerrors.ErrNotFound, masterID, date)
	}

	return nil
}
