package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/schedule/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type mockShiftRepository struct {
	upsertFunc              func(ctx context.Context, shift *model.Shift) (bool, error)
	findByMasterAndDateFunc func(ctx context.Context, masterID, date string) (*model.Shift, error)
	findByMasterFunc        func(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error)
	findByDateFunc          func(ctx context.Context, date string) ([]*model.Shift, error)
	deactivateFunc          func(ctx context.Context, masterID, date string) error
}

func (m *mockShiftRepository) Upsert(ctx context.Context, shift *model.Shift) (bool, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, shift)
	}
	return true, nil
}

func (m *mockShiftRepository) FindByMasterAndDate(ctx context.Context, masterID, date string) (*model.Shift, error) {
	if m.findByMasterAndDateFunc != nil {
		return m.findByMasterAndDateFunc(ctx, masterID, date)
	}
	return &model.Shift{}, nil
}

func (m *mockShiftRepository) FindByMaster(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error) {
	if m.findByMasterFunc != nil {
		return m.findByMasterFunc(ctx, masterID, fromDate, toDate)
	}
	return []*model.Shift{}, nil
}

func (m *mockShiftRepository) FindByDate(ctx context.Context, date string) ([]*model.Shift, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, date)
	}
	return []*model.Shift{}, nil
}

func (m *mockShiftRepository) Deactivate(ctx context.Context, masterID, date string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, masterID, date)
	}
	return nil
}

func newTestConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:          log,
		Location:     time.UTC,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

const (
	masterID      = "64a1f0aa9d3b2c0001aa0001"
	otherMasterID = "64a1f0aa9d3b2c0001aa0002"
)

func newShiftService(repo *mockShiftRepository) ShiftService {
	cfg := newTestConfig()
	return NewShiftService(repo, validator.NewShiftValidator(cfg.Log), cfg)
}

func TestUpsertShift_CreatesForAdmin(t *testing.T) {
	var saved *model.Shift
	repo := &mockShiftRepository{
		upsertFunc: func(ctx context.Context, shift *model.Shift) (bool, error) {
			saved = shift
			return true, nil
		},
	}
	svc := newShiftService(repo)

	shift, created, err := svc.UpsertShift(context.Background(),
		model.Actor{ID: "admin-1", Role: model.RoleAdmin},
		&model.ShiftUpsert{
			MasterID:  masterID,
			Date:      "2026-09-15",
			StartTime: "10:00",
			EndTime:   "18:00",
		},
	)

	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, saved)
	assert.True(t, saved.IsActive)
	assert.Equal(t, "10:00", shift.StartTime)
	assert.Equal(t, "18:00", shift.EndTime)
}

func TestUpsertShift_MasterCannotEditOthers(t *testing.T) {
	svc := newShiftService(&mockShiftRepository{})

	_, _, err := svc.UpsertShift(context.Background(),
		model.Actor{ID: otherMasterID, Role: model.RoleMaster},
		&model.ShiftUpsert{
			MasterID:  masterID,
			Date:      "2026-09-15",
			StartTime: "10:00",
			EndTime:   "18:00",
		},
	)

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodePermissionDenied, appErr.Code)
}

func TestUpsertShift_RejectsInvertedWindow(t *testing.T) {
	svc := newShiftService(&mockShiftRepository{})

	_, _, err := svc.UpsertShift(context.Background(),
		model.Actor{Role: model.RoleAdmin},
		&model.ShiftUpsert{
			MasterID:  masterID,
			Date:      "2026-09-15",
			StartTime: "18:00",
			EndTime:   "10:00",
		},
	)

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestBulkUpsert_CountsCreatedAndUpdated(t *testing.T) {
	existing := map[string]bool{
		masterID + "/2026-09-15": true,
	}
	repo := &mockShiftRepository{
		upsertFunc: func(ctx context.Context, shift *model.Shift) (bool, error) {
			return !existing[shift.MasterID+"/"+shift.Date], nil
		},
	}
	svc := newShiftService(repo)

	result, err := svc.BulkUpsert(context.Background(),
		model.Actor{Role: model.RoleAdmin},
		&model.BulkShiftUpsert{
			MasterIDs: []string{masterID, otherMasterID},
			Dates:     []string{"2026-09-15", "2026-09-16"},
			StartTime: "09:00",
			EndTime:   "17:00",
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Updated)
}

func TestBulkUpsert_AdminOnly(t *testing.T) {
	svc := newShiftService(&mockShiftRepository{})

	_, err := svc.BulkUpsert(context.Background(),
		model.Actor{ID: masterID, Role: model.RoleMaster},
		&model.BulkShiftUpsert{
			MasterIDs: []string{masterID},
			Dates:     []string{"2026-09-15"},
			StartTime: "09:00",
			EndTime:   "17:00",
		},
	)

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodePermissionDenied, appErr.Code)
}

func TestDeactivateShift_RejectsPastDate(t *testing.T) {
	svc := newShiftService(&mockShiftRepository{
		deactivateFunc: func(ctx context.Context, masterID, date string) error {
			t.Fatal("repository should not be called for past dates")
			return nil
		},
	})

	err := svc.DeactivateShift(context.Background(),
		model.Actor{Role: model.RoleAdmin},
		masterID,
		"2020-01-01",
	)

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeCannotModifyPast, appErr.Code)
}

func TestDeactivateShift_MasterOwnSchedule(t *testing.T) {
	called := false
	svc := newShiftService(&mockShiftRepository{
		deactivateFunc: func(ctx context.Context, id, date string) error {
			called = true
			assert.Equal(t, masterID, id)
			return nil
		},
	})

	future := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	err := svc.DeactivateShift(context.Background(),
		model.Actor{ID: masterID, Role: model.RoleMaster},
		masterID,
		future,
	)

	require.NoError(t, err)
	assert.True(t, called)
}
