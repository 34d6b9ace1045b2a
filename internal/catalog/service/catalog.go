package service

import (
	"context"
	"errors"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/internal/catalog/repository"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

type CatalogService interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context) ([]*model.Service, error)
	GetMaster(ctx context.Context, id string) (*model.Master, error)
	ListActiveMasters(ctx context.Context) ([]*model.Master, error)
	ListMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
}

type catalogService struct {
	repo repository.CatalogRepository
	cfg  *config.Config
}

func NewCatalogService(repo repository.CatalogRepository, cfg *config.Config) CatalogService {
	return &catalogService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.Validation("Service ID cannot be empty", nil)
	}

	svc, err := s.repo.FindServiceByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Service", id)
	}
	return svc, nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.FindAllServices(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "error", err)
		return nil, apperrors.Internal("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) GetMaster(ctx context.Context, id string) (*model.Master, error) {
	if id == "" {
		return nil, apperrors.Validation("Master ID cannot be empty", nil)
	}

	master, err := s.repo.FindMasterByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Master", id)
	}
	return master, nil
}

func (s *catalogService) ListActiveMasters(ctx context.Context) ([]*model.Master, error) {
	masters, err := s.repo.FindActiveMasters(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list masters", "error", err)
		return nil, apperrors.Internal("Failed to list masters", err)
	}
	return masters, nil
}

func (s *catalogService) ListMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error) {
	if serviceID == "" {
		return nil, apperrors.Validation("Service ID cannot be empty", nil)
	}

	// Verify the service exists so an unknown id reads as 404, not an empty list.
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	masters, err := s.repo.FindActiveMastersForService(ctx, serviceID)
	if err != nil {
		s.cfg.Log.Error("Failed to list masters for service", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to list masters for service", err)
	}
	return masters, nil
}

func (s *catalogService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, apperrors.Validation("Client ID cannot be empty", nil)
	}

	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Client", id)
	}
	return client, nil
}

func translateLookupError(err error, entity, id string) error {
	switch {
	case errors.Is(err, catalogerrors.ErrNotFound):
		return apperrors.NotFoundWithID(entity, id)
	case errors.Is(err, catalogerrors.ErrInvalidID):
		return apperrors.InvalidData(entity + " ID format is invalid: " + id)
	default:
		return apperrors.Internal("Failed to find "+entity, err)
	}
}
