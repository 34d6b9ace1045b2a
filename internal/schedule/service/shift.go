package service

import (
	"context"
	"errors"
	"time"

	scheduleerrors "salonbook/internal/schedule/errors"
	"salonbook/internal/schedule/repository"
	"salonbook/internal/schedule/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

type ShiftService interface {
	GetShift(ctx context.Context, masterID, date string) (*model.Shift, error)
	ListShifts(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error)
	UpsertShift(ctx context.Context, actor model.Actor, req *model.ShiftUpsert) (*model.Shift, bool, error)
	BulkUpsert(ctx context.Context, actor model.Actor, req *model.BulkShiftUpsert) (*model.BulkShiftResult, error)
	DeactivateShift(ctx context.Context, actor model.Actor, masterID, date string) error
}

type shiftService struct {
	repo      repository.ShiftRepository
	validator *validator.ShiftValidator
	cfg       *config.Config
}

func NewShiftService(
	repo repository.ShiftRepository,
	validator *validator.ShiftValidator,
	cfg *config.Config,
) ShiftService {
	return &shiftService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *shiftService) GetShift(ctx context.Context, masterID, date string) (*model.Shift, error) {
	if masterID == "" || date == "" {
		return nil, apperrors.Validation("Master ID and date are required", nil)
	}
	if _, err := timegrid.ParseDate(date, s.cfg.Location); err != nil {
		return nil, apperrors.InvalidDate("Date must be in YYYY-MM-DD format: " + date)
	}

	shift, err := s.repo.FindByMasterAndDate(ctx, masterID, date)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Shift")
		}
		return nil, apperrors.Internal("Failed to find shift", err)
	}
	return shift, nil
}

func (s *shiftService) ListShifts(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error) {
	if masterID == "" {
		return nil, apperrors.Validation("Master ID is required", nil)
	}
	for _, d := range []string{fromDate, toDate} {
		if d == "" {
			continue
		}
		if _, err := timegrid.ParseDate(d, s.cfg.Location); err != nil {
			return nil, apperrors.InvalidDate("Date must be in YYYY-MM-DD format: " + d)
		}
	}

	shifts, err := s.repo.FindByMaster(ctx, masterID, fromDate, toDate)
	if err != nil {
		s.cfg.Log.Error("Failed to list shifts", "master_id", masterID, "error", err)
		return nil, apperrors.Internal("Failed to list shifts", err)
	}
	return shifts, nil
}

func (s *shiftService) UpsertShift(ctx context.Context, actor model.Actor, req *model.ShiftUpsert) (*model.Shift, bool, error) {
	if err := s.authorizeManage(actor, req.MasterID); err != nil {
		return nil, false, err
	}

	if err := s.validator.ValidateUpsert(req); err != nil {
		s.cfg.Log.Warn("Shift validation failed",
			"master_id", req.MasterID,
			"date", req.Date,
			"error", err,
		)
		return nil, false, apperrors.Validation("Shift validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	shift := &model.Shift{
		MasterID:  req.MasterID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}

	created, err := s.repo.Upsert(ctx, shift)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert shift",
			"master_id", req.MasterID,
			"date", req.Date,
			"error", err,
		)
		return nil, false, apperrors.Internal("Failed to save shift", err)
	}

	s.cfg.Log.Info("Shift saved",
		"master_id", req.MasterID,
		"date", req.Date,
		"window", req.StartTime+"-"+req.EndTime,
		"created", created,
	)
	return shift, created, nil
}

// BulkUpsert applies one working window to every (master, date) pair.
// Pairs are written independently; a failure on one pair aborts the rest
// but already-written pairs stay applied.
func (s *shiftService) BulkUpsert(ctx context.Context, actor model.Actor, req *model.BulkShiftUpsert) (*model.BulkShiftResult, error) {
	if actor.Role != model.RoleAdmin {
		return nil, apperrors.PermissionDenied("Only admins can bulk-edit schedules")
	}

	if err := s.validator.ValidateBulkUpsert(req); err != nil {
		return nil, apperrors.Validation("Bulk shift validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	result := &model.BulkShiftResult{}
	for _, masterID := range req.MasterIDs {
		for _, date := range req.Dates {
			shift := &model.Shift{
				MasterID:  masterID,
				Date:      date,
				StartTime: req.StartTime,
				EndTime:   req.EndTime,
				IsActive:  true,
			}
			created, err := s.repo.Upsert(ctx, shift)
			if err != nil {
				s.cfg.Log.Error("Bulk shift upsert failed",
					"master_id", masterID,
					"date", date,
					"created_so_far", result.Created,
					"updated_so_far", result.Updated,
					"error", err,
				)
				return nil, apperrors.Internal("Failed to save shift for master "+masterID+" on "+date, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
	}

	s.cfg.Log.Info("Bulk shift upsert completed",
		"masters", len(req.MasterIDs),
		"dates", len(req.Dates),
		"created", result.Created,
		"updated", result.Updated,
	)
	return result, nil
}

func (s *shiftService) DeactivateShift(ctx context.Context, actor model.Actor, masterID, date string) error {
	if err := s.authorizeManage(actor, masterID); err != nil {
		return err
	}
	day, err := timegrid.ParseDate(date, s.cfg.Location)
	if err != nil {
		return apperrors.InvalidDate("Date must be in YYYY-MM-DD format: " + date)
	}
	if day.Before(timegrid.Today(time.Now().In(s.cfg.Location))) {
		return apperrors.CannotModifyPast("Cannot deactivate a shift on a past date")
	}

	if err := s.repo.Deactivate(ctx, masterID, date); err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return apperrors.NotFound("Shift")
		}
		s.cfg.Log.Error("Failed to deactivate shift", "master_id", masterID, "date", date, "error", err)
		return apperrors.Internal("Failed to deactivate shift", err)
	}

	s.cfg.Log.Info("Shift deactivated", "master_id", masterID, "date", date)
	return nil
}

// authorizeManage allows admins to manage any schedule and masters to
// manage their own.
func (s *shiftService) authorizeManage(actor model.Actor, masterID string) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleMaster:
		if actor.ID == masterID {
			return nil
		}
		return apperrors.PermissionDenied("Masters can only manage their own schedule")
	default:
		return apperrors.PermissionDenied("Only admins and masters can manage schedules")
	}
}
