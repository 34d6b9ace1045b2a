package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
)

const (
	MastersCollection  = "Masters"
	ServicesCollection = "Services"
	ClientsCollection  = "Clients"
)

type mongoCatalogRepository struct {
	cfg      *config.Config
	db       *mongo.Database
	masters  *mongo.Collection
	services *mongo.Collection
	clients  *mongo.Collection
}

type CatalogRepository interface {
	FindServiceByID(ctx context.Context, id string) (*model.Service, error)
	FindAllServices(ctx context.Context) ([]*model.Service, error)
	FindMasterByID(ctx context.Context, id string) (*model.Master, error)
	FindActiveMasters(ctx context.Context) ([]*model.Master, error)
	FindActiveMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error)
	FindClientByID(ctx context.Context, id string) (*model.Client, error)
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:      cfg,
		db:       db,
		masters:  db.Collection(MastersCollection),
		services: db.Collection(ServicesCollection),
		clients:  db.Collection(ClientsCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCatalogRepository) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var svc model.Service
	err = r.services.FindOne(ctx, bson.M{"_id": objectID}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: service %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &svc, nil
}

func (r *mongoCatalogRepository) FindAllServices(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.services.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func (r *mongoCatalogRepository) FindMasterByID(ctx context.Context, id string) (*model.Master, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var master model.Master
	err = r.masters.FindOne(ctx, bson.M{"_id": objectID}).Decode(&master)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: master %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find master: %w", err)
	}

	return &master, nil
}

func (r *mongoCatalogRepository) FindActiveMasters(ctx context.Context) ([]*model.Master, error) {
	return r.findMasters(ctx, bson.M{"is_active": true})
}

func (r *mongoCatalogRepository) FindActiveMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error) {
	if _, err := primitive.ObjectIDFromHex(serviceID); err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, serviceID)
	}
	return r.findMasters(ctx, bson.M{"is_active": true, "service_ids": serviceID})
}

func (r *mongoCatalogRepository) findMasters(ctx context.Context, filter bson.M) ([]*model.Master, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.masters.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list masters: %w", err)
	}
	defer cursor.Close(ctx)

	var masters []*model.Master
	if err := cursor.All(ctx, &masters); err != nil {
		return nil, fmt.Errorf("failed to decode masters: %w", err)
	}

	return masters, nil
}

func (r *mongoCatalogRepository) FindClientByID(ctx context.Context, id string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var client model.Client
	err = r.clients.FindOne(ctx, bson.M{"_id": objectID}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: client %s", catalogerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	return &client, nil
}
