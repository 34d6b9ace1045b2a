package service

import (
	"context"
	"sort"
	"time"

	bookingrepo "salonbook/internal/booking/repository"
	catalogrepo "salonbook/internal/catalog/repository"
	schedulerepo "salonbook/internal/schedule/repository"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/timegrid"
)

// Reasons attached to an empty slot list so the client can tell "day off"
// from "fully booked".
const (
	ReasonNoShift     = "no_shift"
	ReasonFullyBooked = "fully_booked"
	ReasonPastDate    = "past_date"
)

// DaySlots is the availability answer for one master on one date.
type DaySlots struct {
	MasterID string   `json:"master_id"`
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
	Reason   string   `json:"reason,omitempty"`
}

type AvailabilityService interface {
	// SlotsForMaster lists bookable "HH:MM" starts for one master.
	SlotsForMaster(ctx context.Context, masterID, date, serviceID string) (*DaySlots, error)
	// UnionSlots merges the slots of every active master qualified for the
	// service, deduplicated and sorted. Used by the any-master flow.
	UnionSlots(ctx context.Context, serviceID, date string) (*DaySlots, error)
}

type availabilityService struct {
	shiftRepo   schedulerepo.ShiftRepository
	bookingRepo bookingrepo.BookingRepository
	catalogRepo catalogrepo.CatalogRepository
	cfg         *config.Config
}

func NewAvailabilityService(
	shiftRepo schedulerepo.ShiftRepository,
	bookingRepo bookingrepo.BookingRepository,
	catalogRepo catalogrepo.CatalogRepository,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		shiftRepo:   shiftRepo,
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		cfg:         cfg,
	}
}

func (s *availabilityService) SlotsForMaster(ctx context.Context, masterID, date, serviceID string) (*DaySlots, error) {
	if masterID == "" {
		return nil, apperrors.Validation("Master ID is required", nil)
	}

	day, duration, err := s.resolveRequest(ctx, date, serviceID)
	if err != nil {
		return nil, err
	}

	result := &DaySlots{MasterID: masterID, Date: date, Slots: []string{}}

	now := time.Now().In(s.cfg.Location)
	if day.Before(timegrid.Today(now)) {
		result.Reason = ReasonPastDate
		return result, nil
	}

	slots, reason, err := s.masterSlots(ctx, masterID, date, day, duration, now)
	if err != nil {
		return nil, err
	}
	result.Slots = slots
	result.Reason = reason
	return result, nil
}

func (s *availabilityService) UnionSlots(ctx context.Context, serviceID, date string) (*DaySlots, error) {
	if serviceID == "" {
		return nil, apperrors.Validation("Service ID is required", nil)
	}

	day, duration, err := s.resolveRequest(ctx, date, serviceID)
	if err != nil {
		return nil, err
	}

	result := &DaySlots{Date: date, Slots: []string{}}

	now := time.Now().In(s.cfg.Location)
	if day.Before(timegrid.Today(now)) {
		result.Reason = ReasonPastDate
		return result, nil
	}

	masters, err := s.catalogRepo.FindActiveMastersForService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to find masters for service", err)
	}

	seen := map[string]bool{}
	anyShift := false
	for _, m := range masters {
		slots, reason, err := s.masterSlots(ctx, m.ID, date, day, duration, now)
		if err != nil {
			return nil, err
		}
		if reason != ReasonNoShift {
			anyShift = true
		}
		for _, slot := range slots {
			seen[slot] = true
		}
	}

	for slot := range seen {
		result.Slots = append(result.Slots, slot)
	}
	sort.Strings(result.Slots)

	if len(result.Slots) == 0 {
		if anyShift {
			result.Reason = ReasonFullyBooked
		} else {
			result.Reason = ReasonNoShift
		}
	}
	return result, nil
}

// resolveRequest validates the date and determines the slot duration:
// the service's when given, the configured default otherwise.
func (s *availabilityService) resolveRequest(ctx context.Context, date, serviceID string) (time.Time, int, error) {
	if date == "" {
		return time.Time{}, 0, apperrors.Validation("Date is required", nil)
	}
	day, err := timegrid.ParseDate(date, s.cfg.Location)
	if err != nil {
		return time.Time{}, 0, apperrors.InvalidDate("Date must be in YYYY-MM-DD format: " + date)
	}

	duration := s.cfg.DefaultServiceDurationMin
	if serviceID != "" {
		svc, err := s.catalogRepo.FindServiceByID(ctx, serviceID)
		if err != nil {
			return time.Time{}, 0, apperrors.NotFoundWithID("Service", serviceID)
		}
		if svc.DurationMin > 0 {
			duration = svc.DurationMin
		}
	}

	return day, duration, nil
}

// masterSlots walks the 30-minute grid across the master's shift and keeps
// every start whose full duration avoids active bookings. Same-day requests
// additionally drop starts inside the lead-time buffer.
func (s *availabilityService) masterSlots(ctx context.Context, masterID, date string, day time.Time, duration int, now time.Time) ([]string, string, error) {
	shift, err := s.shiftRepo.FindByMasterAndDate(ctx, masterID, date)
	if err != nil {
		return []string{}, ReasonNoShift, nil
	}
	if !shift.IsActive {
		return []string{}, ReasonNoShift, nil
	}

	shiftStart, err := timegrid.ParseClock(shift.StartTime)
	if err != nil {
		return nil, "", apperrors.Internal("Stored shift has invalid start time", err)
	}
	shiftEnd, err := timegrid.ParseClock(shift.EndTime)
	if err != nil {
		return nil, "", apperrors.Internal("Stored shift has invalid end time", err)
	}

	bookings, err := s.bookingRepo.FindActiveByMasterAndDate(ctx, masterID, date)
	if err != nil {
		return nil, "", apperrors.Internal("Failed to load existing bookings", err)
	}

	busy := make([]timegrid.Interval, 0, len(bookings))
	for _, b := range bookings {
		start, err := timegrid.ParseClock(b.StartTime)
		if err != nil {
			return nil, "", apperrors.Internal("Stored booking has invalid start time", err)
		}
		busy = append(busy, timegrid.Interval{Start: start, End: start + b.DurationMin})
	}

	// Same-day: a slot must start strictly after now+BookingBufferMin.
	// Slots sit on whole minutes, so excluding the truncated cutoff minute
	// itself gives the strict comparison.
	cutoffMin := -1
	if day.Equal(timegrid.Today(now)) {
		cutoff := now.Add(time.Duration(s.cfg.BookingBufferMin) * time.Minute)
		if timegrid.Today(cutoff).After(day) {
			cutoffMin = 24 * 60 // buffer crosses midnight, nothing left today
		} else {
			cutoffMin = cutoff.Hour()*60 + cutoff.Minute()
		}
	}

	slots := []string{}
	for _, start := range timegrid.Enumerate(shiftStart, shiftEnd, duration, s.cfg.SlotGranularityMin) {
		if start <= cutoffMin {
			continue
		}
		if timegrid.Free(start, duration, busy) {
			slots = append(slots, timegrid.FormatClock(start))
		}
	}

	reason := ""
	if len(slots) == 0 {
		reason = ReasonFullyBooked
	}
	return slots, reason, nil
}
