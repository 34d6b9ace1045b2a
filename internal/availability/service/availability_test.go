package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/pkg/config"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

const (
	masterID  = "64a1f0aa9d3b2c0001aa0001"
	serviceID = "64a1f0aa9d3b2c0001dd0001"
)

type mockShiftRepository struct {
	shifts map[string]*model.Shift
}

func (m *mockShiftRepository) Upsert(ctx context.Context, shift *model.Shift) (bool, error) {
	return true, nil
}

func (m *mockShiftRepository) FindByMasterAndDate(ctx context.Context, masterID, date string) (*model.Shift, error) {
	if shift, ok := m.shifts[masterID+"/"+date]; ok {
		return shift, nil
	}
	return nil, fmt.Errorf("no shift for %s on %s", masterID, date)
}

func (m *mockShiftRepository) FindByMaster(ctx context.Context, masterID, fromDate, toDate string) ([]*model.Shift, error) {
	return nil, nil
}

func (m *mockShiftRepository) FindByDate(ctx context.Context, date string) ([]*model.Shift, error) {
	return nil, nil
}

func (m *mockShiftRepository) Deactivate(ctx context.Context, masterID, date string) error {
	return nil
}

type mockBookingRepository struct {
	active map[string][]*model.Booking
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, fmt.Errorf("not found")
}

func (m *mockBookingRepository) FindActiveByMasterAndDate(ctx context.Context, masterID, date string) ([]*model.Booking, error) {
	return m.active[masterID+"/"+date], nil
}

func (m *mockBookingRepository) Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) CountActiveByMasterOnDate(ctx context.Context, masterID, date string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCatalogRepository struct {
	services map[string]*model.Service
	masters  []*model.Master
}

func (m *mockCatalogRepository) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	if svc, ok := m.services[id]; ok {
		return svc, nil
	}
	return nil, fmt.Errorf("not found: %s", id)
}

func (m *mockCatalogRepository) FindAllServices(ctx context.Context) ([]*model.Service, error) {
	return nil, nil
}

func (m *mockCatalogRepository) FindMasterByID(ctx context.Context, id string) (*model.Master, error) {
	for _, master := range m.masters {
		if master.ID == id {
			return master, nil
		}
	}
	return nil, fmt.Errorf("not found: %s", id)
}

func (m *mockCatalogRepository) FindActiveMasters(ctx context.Context) ([]*model.Master, error) {
	return m.masters, nil
}

func (m *mockCatalogRepository) FindActiveMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error) {
	return m.masters, nil
}

func (m *mockCatalogRepository) FindClientByID(ctx context.Context, id string) (*model.Client, error) {
	return nil, fmt.Errorf("not found: %s", id)
}

type fixture struct {
	shiftRepo   *mockShiftRepository
	bookingRepo *mockBookingRepository
	catalog     *mockCatalogRepository
	svc         AvailabilityService
}

func newFixture() *fixture {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:                       log,
		Location:                  time.UTC,
		SlotGranularityMin:        30,
		DefaultServiceDurationMin: 60,
		BookingBufferMin:          30,
		ReadTimeout:               5 * time.Second,
	}

	f := &fixture{
		shiftRepo:   &mockShiftRepository{shifts: map[string]*model.Shift{}},
		bookingRepo: &mockBookingRepository{active: map[string][]*model.Booking{}},
		catalog: &mockCatalogRepository{services: map[string]*model.Service{
			serviceID: {ID: serviceID, Name: "Haircut", DurationMin: 60},
		}},
	}
	f.svc = NewAvailabilityService(f.shiftRepo, f.bookingRepo, f.catalog, cfg)
	return f
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestSlotsForMaster_GridAroundBusyInterval(t *testing.T) {
	f := newFixture()
	date := futureDate(7)
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "14:00", IsActive: true,
	}
	f.bookingRepo.active[masterID+"/"+date] = []*model.Booking{
		{MasterID: masterID, StartTime: "11:00", DurationMin: 60, Status: model.StatusConfirmed},
	}

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, date, serviceID)

	require.NoError(t, err)
	// 10:30 would run into the 11:00 booking; 13:30 would run past 14:00.
	assert.Equal(t, []string{"10:00", "12:00", "12:30", "13:00"}, result.Slots)
	assert.Empty(t, result.Reason)
}

func TestSlotsForMaster_NoShift(t *testing.T) {
	f := newFixture()

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, futureDate(7), serviceID)

	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonNoShift, result.Reason)
}

func TestSlotsForMaster_InactiveShift(t *testing.T) {
	f := newFixture()
	date := futureDate(7)
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "18:00", IsActive: false,
	}

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, date, serviceID)

	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonNoShift, result.Reason)
}

func TestSlotsForMaster_PastDate(t *testing.T) {
	f := newFixture()

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, "2020-01-01", serviceID)

	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonPastDate, result.Reason)
}

func TestSlotsForMaster_SameDayBufferIsStrict(t *testing.T) {
	f := newFixture()
	svc := f.svc.(*availabilityService)

	date := "2026-09-10"
	day, err := timegrid.ParseDate(date, time.UTC)
	require.NoError(t, err)
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "14:00", IsActive: true,
	}

	// Seconds into the cutoff minute: 10:30 is not strictly after 10:30:47.
	now := day.Add(10*time.Hour + 47*time.Second)
	slots, reason, err := svc.masterSlots(context.Background(), masterID, date, day, 60, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30", "12:00", "12:30", "13:00"}, slots)
	assert.Empty(t, reason)

	// A slot exactly at now+buffer is excluded as well.
	now = day.Add(10 * time.Hour)
	slots, _, err = svc.masterSlots(context.Background(), masterID, date, day, 60, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30", "12:00", "12:30", "13:00"}, slots)
}

func TestSlotsForMaster_FullyBooked(t *testing.T) {
	f := newFixture()
	date := futureDate(7)
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "12:00", IsActive: true,
	}
	f.bookingRepo.active[masterID+"/"+date] = []*model.Booking{
		{MasterID: masterID, StartTime: "10:00", DurationMin: 120, Status: model.StatusConfirmed},
	}

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, date, serviceID)

	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonFullyBooked, result.Reason)
}

func TestSlotsForMaster_DefaultDurationWithoutService(t *testing.T) {
	f := newFixture()
	date := futureDate(7)
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "12:00", IsActive: true,
	}

	result, err := f.svc.SlotsForMaster(context.Background(), masterID, date, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, result.Slots)
}

func TestUnionSlots_MergesAndSorts(t *testing.T) {
	f := newFixture()
	date := futureDate(7)
	other := "64a1f0aa9d3b2c0001aa0002"
	f.catalog.masters = []*model.Master{
		{ID: masterID, IsActive: true, ServiceIDs: []string{serviceID}},
		{ID: other, IsActive: true, ServiceIDs: []string{serviceID}},
	}
	f.shiftRepo.shifts[masterID+"/"+date] = &model.Shift{
		MasterID: masterID, Date: date, StartTime: "10:00", EndTime: "12:00", IsActive: true,
	}
	f.shiftRepo.shifts[other+"/"+date] = &model.Shift{
		MasterID: other, Date: date, StartTime: "11:00", EndTime: "13:00", IsActive: true,
	}

	result, err := f.svc.UnionSlots(context.Background(), serviceID, date)

	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30", "12:00"}, result.Slots)
}

func TestUnionSlots_NoShiftAnywhere(t *testing.T) {
	f := newFixture()
	f.catalog.masters = []*model.Master{
		{ID: masterID, IsActive: true, ServiceIDs: []string{serviceID}},
	}

	result, err := f.svc.UnionSlots(context.Background(), serviceID, futureDate(7))

	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Equal(t, ReasonNoShift, result.Reason)
}
