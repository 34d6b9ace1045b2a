package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"salonbook/internal/booking/validator"
	"salonbook/pkg/config"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type mockBookingRepository struct {
	createFunc             func(ctx context.Context, booking *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findActiveFunc         func(ctx context.Context, masterID, date string) ([]*model.Booking, error)
	findFunc               func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	countFunc              func(ctx context.Context, filter model.BookingFilter) (int64, error)
	countActiveFunc        func(ctx context.Context, masterID, date string) (int64, error)
	updateStatusFunc       func(ctx context.Context, id string, from, to model.BookingStatus) error
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "64a1f0aa9d3b2c0001bb0001"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingRepository) FindActiveByMasterAndDate(ctx context.Context, masterID, date string) ([]*model.Booking, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, masterID, date)
	}
	return nil, nil
}

func (m *mockBookingRepository) Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) CountActiveByMasterOnDate(ctx context.Context, masterID, date string) (int64, error) {
	if m.countActiveFunc != nil {
		return m.countActiveFunc(ctx, masterID, date)
	}
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockCatalogRepository struct {
	services map[string]*model.Service
	masters  map[string]*model.Master
	clients  map[string]*model.Client
}

func (m *mockCatalogRepository) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	if svc, ok := m.services[id]; ok {
		return svc, nil
	}
	return nil, errNotFound(id)
}

func (m *mockCatalogRepository) FindAllServices(ctx context.Context) ([]*model.Service, error) {
	var out []*model.Service
	for _, svc := range m.services {
		out = append(out, svc)
	}
	return out, nil
}

func (m *mockCatalogRepository) FindMasterByID(ctx context.Context, id string) (*model.Master, error) {
	if master, ok := m.masters[id]; ok {
		return master, nil
	}
	return nil, errNotFound(id)
}

func (m *mockCatalogRepository) FindActiveMasters(ctx context.Context) ([]*model.Master, error) {
	var out []*model.Master
	for _, master := range m.masters {
		if master.IsActive {
			out = append(out, master)
		}
	}
	return out, nil
}

func (m *mockCatalogRepository) FindActiveMastersForService(ctx context.Context, serviceID string) ([]*model.Master, error) {
	var out []*model.Master
	for _, master := range m.masters {
		if !master.IsActive {
			continue
		}
		for _, sid := range master.ServiceIDs {
			if sid == serviceID {
				out = append(out, master)
				break
			}
		}
	}
	return out, nil
}

func (m *mockCatalogRepository) FindClientByID(ctx context.Context, id string) (*model.Client, error) {
	if client, ok := m.clients[id]; ok {
		return client, nil
	}
	return nil, errNotFound(id)
}

type mockShiftRepository struct {
	shifts map[string]*model.Shift // keyed masterID + "/" + date
}

func (m *mockShiftRepository) Upsert(ctx context.Context, shift *model.Shift) (bool, error) {
	return true, nil
}

func (m *mockShiftRepository) FindByMasterAndDate(ctx context.Context, masterID, date string) (*model.Shift, error) {
	if shift, ok := m.shifts[masterID+"/"+date]; ok {
		return shift, nil
	}
	return nil, errNotFound(masterID + "/" + date)
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

// mockPublisher records events. Publishing happens on a goroutine, so
// assertions go through waitForEvents.
type mockPublisher struct {
	mu        sync.Mutex
	published []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	return nil
}

func (m *mockPublisher) waitForEvents(t *testing.T, n int) []kafka.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.published) >= n {
			out := append([]kafka.Message(nil), m.published...)
			m.mu.Unlock()
			return out
		}
		m.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d published event(s)", n)
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// duplicateKeyError builds the error shape mongo.IsDuplicateKeyError
// recognizes.
func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

type notFoundErr string

func (e notFoundErr) Error() string { return "not found: " + string(e) }

func errNotFound(id string) error { return notFoundErr(id) }

func newTestConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:                       log,
		Location:                  time.UTC,
		SlotGranularityMin:        30,
		DefaultServiceDurationMin: 60,
		BookingBufferMin:          30,
		NotifyTimeout:             time.Second,
		ReadTimeout:               5 * time.Second,
		WriteTimeout:              5 * time.Second,
	}
}

type fixture struct {
	repo      *mockBookingRepository
	lockRepo  *mockLockRepository
	catalog   *mockCatalogRepository
	shiftRepo *mockShiftRepository
	producer  *mockPublisher
	cfg       *config.Config
	svc       BookingService
}

func newFixture() *fixture {
	f := &fixture{
		repo:      &mockBookingRepository{},
		lockRepo:  &mockLockRepository{},
		catalog:   &mockCatalogRepository{services: map[string]*model.Service{}, masters: map[string]*model.Master{}, clients: map[string]*model.Client{}},
		shiftRepo: &mockShiftRepository{shifts: map[string]*model.Shift{}},
		producer:  &mockPublisher{},
		cfg:       newTestConfig(),
	}
	f.svc = NewBookingService(
		f.repo,
		f.lockRepo,
		f.catalog,
		f.shiftRepo,
		validator.NewBookingValidator(f.cfg.Log),
		f.producer,
		f.cfg,
	)
	return f
}
