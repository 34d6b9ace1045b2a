package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"salonbook/internal/booking/repository"
	"salonbook/internal/booking/validator"
	catalogrepo "salonbook/internal/catalog/repository"
	schedulerepo "salonbook/internal/schedule/repository"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

// CreateResult pairs the stored booking with the master the allocator
// assigned, so the handler can surface the name in any-master mode.
type CreateResult struct {
	Booking *model.Booking
	Master  *model.Master
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, req *model.BookingCreate) (*CreateResult, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor model.Actor, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	ChangeStatus(ctx context.Context, actor model.Actor, id string, next model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.BookingLockRepository
	catalogRepo catalogrepo.CatalogRepository
	shiftRepo   schedulerepo.ShiftRepository
	validator   *validator.BookingValidator
	producer    EventPublisher
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	catalogRepo catalogrepo.CatalogRepository,
	shiftRepo schedulerepo.ShiftRepository,
	validator *validator.BookingValidator,
	producer EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		catalogRepo: catalogRepo,
		shiftRepo:   shiftRepo,
		validator:   validator,
		producer:    producer,
		cfg:         cfg,
	}
}

// slotRequest is a validated, resolved booking request: the service is
// loaded and the requested start parsed onto the minute grid.
type slotRequest struct {
	date     string
	startMin int
	duration int
	service  *model.Service
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, req *model.BookingCreate) (*CreateResult, error) {
	if actor.Role == model.RoleClient && actor.ID != req.ClientID {
		return nil, apperrors.PermissionDenied("Clients can only book for themselves")
	}

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "client_id", req.ClientID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	slot, err := s.resolveSlot(ctx, req, time.Now().In(s.cfg.Location))
	if err != nil {
		return nil, err
	}

	client, err := s.catalogRepo.FindClientByID(ctx, req.ClientID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Client", req.ClientID)
	}

	var master *model.Master
	if req.MasterID != "" {
		master, err = s.resolveSpecificMaster(ctx, req.MasterID, slot)
	} else {
		master, err = s.pickLeastLoadedMaster(ctx, slot)
	}
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ClientID:    req.ClientID,
		MasterID:    master.ID,
		ServiceID:   slot.service.ID,
		Date:        slot.date,
		StartTime:   timegrid.FormatClock(slot.startMin),
		DurationMin: slot.duration,
		Price:       slot.service.Price,
		Status:      model.StatusPending,
	}

	if err := s.allocate(ctx, booking, slot); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"client_id", booking.ClientID,
		"master_id", booking.MasterID,
		"date", booking.Date,
		"start_time", booking.StartTime,
	)

	s.publishCreated(booking, &eventContext{client: client, master: master, service: slot.service})

	return &CreateResult{Booking: booking, Master: master}, nil
}

// resolveSlot validates the requested date and time against the calendar:
// the date must not be in the past and same-day slots must start strictly
// after now+BookingBufferMin.
func (s *bookingService) resolveSlot(ctx context.Context, req *model.BookingCreate, now time.Time) (*slotRequest, error) {
	day, err := timegrid.ParseDate(req.Date, s.cfg.Location)
	if err != nil {
		return nil, apperrors.InvalidDate("Date must be in YYYY-MM-DD format: " + req.Date)
	}
	startMin, err := timegrid.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidTime("Start time must be in HH:MM format: " + req.StartTime)
	}
	if startMin%s.cfg.SlotGranularityMin != 0 {
		return nil, apperrors.InvalidTime(fmt.Sprintf(
			"Start time must be on a %d-minute boundary", s.cfg.SlotGranularityMin))
	}

	today := timegrid.Today(now)
	if day.Before(today) {
		return nil, apperrors.InvalidDate("Cannot book a date in the past")
	}
	if day.Equal(today) {
		earliest := now.Add(time.Duration(s.cfg.BookingBufferMin) * time.Minute)
		slotStart := day.Add(time.Duration(startMin) * time.Minute)
		if !slotStart.After(earliest) {
			return nil, apperrors.InvalidTime(fmt.Sprintf(
				"Same-day bookings need at least %d minutes of lead time", s.cfg.BookingBufferMin))
		}
	}

	svc, err := s.catalogRepo.FindServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Service", req.ServiceID)
	}

	duration := svc.DurationMin
	if duration <= 0 {
		duration = s.cfg.DefaultServiceDurationMin
	}

	return &slotRequest{
		date:     req.Date,
		startMin: startMin,
		duration: duration,
		service:  svc,
	}, nil
}

// resolveSpecificMaster checks the named master can actually take the slot:
// active, qualified for the service, on shift, and free.
func (s *bookingService) resolveSpecificMaster(ctx context.Context, masterID string, slot *slotRequest) (*model.Master, error) {
	master, err := s.catalogRepo.FindMasterByID(ctx, masterID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Master", masterID)
	}
	if !master.IsActive {
		return nil, apperrors.InvalidData("Master is not accepting bookings")
	}
	if !masterProvides(master, slot.service.ID) {
		return nil, apperrors.InvalidData("Master does not provide this service")
	}

	free, err := s.slotFree(ctx, masterID, slot)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperrors.SlotTaken("The requested time slot is not available")
	}

	return master, nil
}

// pickLeastLoadedMaster implements the any-master flow: among active
// masters qualified for the service whose shift covers the slot and who
// are free at that time, pick the one with the fewest active bookings on
// that date. Ties break randomly so load spreads over time.
func (s *bookingService) pickLeastLoadedMaster(ctx context.Context, slot *slotRequest) (*model.Master, error) {
	masters, err := s.catalogRepo.FindActiveMastersForService(ctx, slot.service.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to find masters for service", err)
	}

	var candidates []*model.Master
	for _, m := range masters {
		free, err := s.slotFree(ctx, m.ID, slot)
		if err != nil {
			return nil, err
		}
		if free {
			candidates = append(candidates, m)
		}
	}

	if len(candidates) == 0 {
		return nil, apperrors.NoMasters("No master is available for this slot")
	}

	minLoad := int64(-1)
	var leastLoaded []*model.Master
	for _, m := range candidates {
		load, err := s.repo.CountActiveByMasterOnDate(ctx, m.ID, slot.date)
		if err != nil {
			return nil, apperrors.Internal("Failed to count bookings", err)
		}
		switch {
		case minLoad < 0 || load < minLoad:
			minLoad = load
			leastLoaded = []*model.Master{m}
		case load == minLoad:
			leastLoaded = append(leastLoaded, m)
		}
	}

	return leastLoaded[rand.Intn(len(leastLoaded))], nil
}

// slotFree reports whether the master has an active shift covering
// [start, start+duration) on the date and no overlapping active booking.
func (s *bookingService) slotFree(ctx context.Context, masterID string, slot *slotRequest) (bool, error) {
	shift, err := s.shiftRepo.FindByMasterAndDate(ctx, masterID, slot.date)
	if err != nil {
		// No shift means no availability, not an error.
		return false, nil
	}
	if !shift.IsActive {
		return false, nil
	}

	shiftStart, err := timegrid.ParseClock(shift.StartTime)
	if err != nil {
		return false, apperrors.Internal("Stored shift has invalid start time", err)
	}
	shiftEnd, err := timegrid.ParseClock(shift.EndTime)
	if err != nil {
		return false, apperrors.Internal("Stored shift has invalid end time", err)
	}
	if slot.startMin < shiftStart || slot.startMin+slot.duration > shiftEnd {
		return false, nil
	}

	busy, err := s.busyIntervals(ctx, masterID, slot.date)
	if err != nil {
		return false, err
	}

	return timegrid.Free(slot.startMin, slot.duration, busy), nil
}

func (s *bookingService) busyIntervals(ctx context.Context, masterID, date string) ([]timegrid.Interval, error) {
	bookings, err := s.repo.FindActiveByMasterAndDate(ctx, masterID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load existing bookings", err)
	}

	intervals := make([]timegrid.Interval, 0, len(bookings))
	for _, b := range bookings {
		start, err := timegrid.ParseClock(b.StartTime)
		if err != nil {
			return nil, apperrors.Internal("Stored booking has invalid start time", err)
		}
		intervals = append(intervals, timegrid.Interval{Start: start, End: start + b.DurationMin})
	}
	return intervals, nil
}

// allocate takes the advisory lock for the slot and re-checks the overlap
// inside a transaction before inserting. The lock closes the window where
// two requests both pass slotFree; the transactional re-check covers lock
// expiry under pathological delays.
func (s *bookingService) allocate(ctx context.Context, booking *model.Booking, slot *slotRequest) error {
	lockID, err := s.acquireSlotLock(ctx, booking.MasterID, booking.Date, booking.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		busy, err := s.busyIntervals(sessCtx, booking.MasterID, booking.Date)
		if err != nil {
			return err
		}
		if !timegrid.Free(slot.startMin, slot.duration, busy) {
			return apperrors.SlotTaken("The requested time slot is not available")
		}
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"master_id", booking.MasterID,
			"date", booking.Date,
			"start_time", booking.StartTime,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to create booking", err)
	}

	return nil
}

// acquireSlotLock inserts an advisory lock document keyed by the slot
// coordinates. A duplicate key means another request is allocating the
// same slot right now.
func (s *bookingService) acquireSlotLock(ctx context.Context, masterID, date, startTime string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s_%s_%s", masterID, date, startTime)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func masterProvides(master *model.Master, serviceID string) bool {
	for _, id := range master.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
