package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/pkg/events"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

const (
	clientID  = "64a1f0aa9d3b2c0001cc0001"
	serviceID = "64a1f0aa9d3b2c0001dd0001"
	masterA   = "64a1f0aa9d3b2c0001aa0001"
	masterB   = "64a1f0aa9d3b2c0001aa0002"
	masterC   = "64a1f0aa9d3b2c0001aa0003"
)

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func (f *fixture) seedBasics() {
	f.catalog.clients[clientID] = &model.Client{ID: clientID, Name: "Anna", ChatID: 100}
	f.catalog.services[serviceID] = &model.Service{
		ID: serviceID, Name: "Haircut", Category: "hair", Price: 1500, DurationMin: 60,
	}
	f.catalog.masters[masterA] = &model.Master{
		ID: masterA, Name: "Olga", IsActive: true, ServiceIDs: []string{serviceID}, ChatID: 200,
	}
}

func (f *fixture) seedShift(masterID, date, start, end string) {
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: start, EndTime: end, IsActive: true,
	}
}

func clientActor() model.Actor {
	return model.Actor{ID: clientID, Role: model.RoleClient}
}

func TestCreate_SpecificMaster(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)
	f.seedShift(masterA, date, "10:00", "18:00")

	result, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "11:00",
	})

	require.NoError(t, err)
	booking := result.Booking
	assert.Equal(t, model.StatusPending, booking.Status)
	assert.Equal(t, masterA, booking.MasterID)
	assert.Equal(t, 60, booking.DurationMin)
	assert.Equal(t, 1500, booking.Price, "price snapshot comes from the service record")
	assert.Equal(t, "Olga", result.Master.DisplayName())

	published := f.producer.waitForEvents(t, 1)
	assert.Equal(t, events.TypeBookingCreated, published[0].GetEventType())
	assert.Equal(t, booking.ID, published[0].Key)
}

func TestCreate_SlotTakenOnOverlap(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)
	f.seedShift(masterA, date, "10:00", "18:00")
	f.repo.findActiveFunc = func(ctx context.Context, masterID, d string) ([]*model.Booking, error) {
		return []*model.Booking{
			{MasterID: masterID, Date: d, StartTime: "11:00", DurationMin: 60, Status: model.StatusConfirmed},
		}, nil
	}

	// 11:30 overlaps the 11:00-12:00 booking even though the start differs.
	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "11:30",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeSlotTaken, appErr.Code)
	assert.Zero(t, f.producer.count())
}

func TestCreate_RejectsOutsideShift(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)
	f.seedShift(masterA, date, "10:00", "14:00")

	// 13:30 + 60min runs past the 14:00 shift end.
	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "13:30",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeSlotTaken, appErr.Code)
}

func TestCreate_RejectsPastDate(t *testing.T) {
	f := newFixture()
	f.seedBasics()

	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      "2020-01-01",
		StartTime: "11:00",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInvalidDate, appErr.Code)
}

func TestCreate_SameDayBufferIsStrict(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	svc := f.svc.(*bookingService)

	day, err := timegrid.ParseDate("2026-09-10", time.UTC)
	require.NoError(t, err)
	req := &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      "2026-09-10",
		StartTime: "10:30",
	}

	// Seconds into the cutoff minute: 10:30 is not strictly after 10:30:47.
	now := day.Add(10*time.Hour + 47*time.Second)
	_, err = svc.resolveSlot(context.Background(), req, now)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInvalidTime, appErr.Code)

	// Exactly on the boundary fails too.
	now = day.Add(10 * time.Hour)
	_, err = svc.resolveSlot(context.Background(), req, now)
	require.Error(t, err)
	appErr = apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInvalidTime, appErr.Code)

	// One granularity step later clears the buffer.
	later := &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      "2026-09-10",
		StartTime: "11:00",
	}
	_, err = svc.resolveSlot(context.Background(), later, now)
	require.NoError(t, err)
}

func TestCreate_RejectsOffGridStart(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)
	f.seedShift(masterA, date, "10:00", "18:00")

	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "11:10",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInvalidTime, appErr.Code)
}

func TestCreate_ClientCannotBookForOthers(t *testing.T) {
	f := newFixture()
	f.seedBasics()

	_, err := f.svc.Create(context.Background(),
		model.Actor{ID: "64a1f0aa9d3b2c0001cc0099", Role: model.RoleClient},
		&model.BookingCreate{
			ClientID:  clientID,
			MasterID:  masterA,
			ServiceID: serviceID,
			Date:      futureDate(7),
			StartTime: "11:00",
		})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodePermissionDenied, appErr.Code)
}

func TestCreate_AnyMaster_PicksLeastLoaded(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)

	f.catalog.masters[masterB] = &model.Master{
		ID: masterB, Name: "Ira", IsActive: true, ServiceIDs: []string{serviceID},
	}
	f.catalog.masters[masterC] = &model.Master{
		ID: masterC, Name: "Sveta", IsActive: true, ServiceIDs: []string{serviceID},
	}

	// A and B are on shift; C has no shift and must be disqualified.
	f.seedShift(masterA, date, "10:00", "18:00")
	f.seedShift(masterB, date, "10:00", "18:00")

	loads := map[string]int64{masterA: 3, masterB: 1}
	f.repo.countActiveFunc = func(ctx context.Context, masterID, d string) (int64, error) {
		return loads[masterID], nil
	}

	result, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "11:00",
	})

	require.NoError(t, err)
	assert.Equal(t, masterB, result.Booking.MasterID, "least-loaded master wins")
	assert.Equal(t, masterB, result.Master.ID)
}

func TestCreate_AnyMaster_NoMasters(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	// Nobody has a shift on the date.

	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		ServiceID: serviceID,
		Date:      futureDate(7),
		StartTime: "11:00",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeNoMasters, appErr.Code)
}

func TestCreate_AnyMaster_TieBreakStaysWithinLeastLoaded(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)

	f.catalog.masters[masterB] = &model.Master{
		ID: masterB, Name: "Ira", IsActive: true, ServiceIDs: []string{serviceID},
	}
	f.catalog.masters[masterC] = &model.Master{
		ID: masterC, Name: "Sveta", IsActive: true, ServiceIDs: []string{serviceID},
	}
	f.seedShift(masterA, date, "10:00", "18:00")
	f.seedShift(masterB, date, "10:00", "18:00")
	f.seedShift(masterC, date, "10:00", "18:00")

	loads := map[string]int64{masterA: 2, masterB: 0, masterC: 0}
	f.repo.countActiveFunc = func(ctx context.Context, masterID, d string) (int64, error) {
		return loads[masterID], nil
	}

	for i := 0; i < 10; i++ {
		result, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
			ClientID:  clientID,
			ServiceID: serviceID,
			Date:      date,
			StartTime: "11:00",
		})
		require.NoError(t, err)
		assert.Contains(t, []string{masterB, masterC}, result.Booking.MasterID)
	}
}

func TestCreate_LockConflict(t *testing.T) {
	f := newFixture()
	f.seedBasics()
	date := futureDate(7)
	f.seedShift(masterA, date, "10:00", "18:00")
	f.lockRepo.createFunc = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		return nil, duplicateKeyError()
	}

	_, err := f.svc.Create(context.Background(), clientActor(), &model.BookingCreate{
		ClientID:  clientID,
		MasterID:  masterA,
		ServiceID: serviceID,
		Date:      date,
		StartTime: "11:00",
	})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}
