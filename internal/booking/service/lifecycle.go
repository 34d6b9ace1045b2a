package service

import (
	"context"
	"errors"
	"sync"

	bookingerrors "salonbook/internal/booking/errors"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// List applies role scoping on top of the caller's filter: clients see
// their own bookings, masters theirs, admins everything.
func (s *bookingService) List(ctx context.Context, actor model.Actor, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	switch actor.Role {
	case model.RoleClient:
		filter.ClientID = actor.ID
	case model.RoleMaster:
		filter.MasterID = actor.ID
	case model.RoleAdmin:
		// unrestricted
	default:
		return nil, 0, apperrors.Unauthorized("Unknown role")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// ChangeStatus moves a booking through the state machine. Confirming an
// already-confirmed booking is a no-op and emits no event.
func (s *bookingService) ChangeStatus(ctx context.Context, actor model.Actor, id string, next model.BookingStatus) (*model.Booking, error) {
	if !next.Valid() {
		return nil, apperrors.InvalidData("Unknown booking status: " + string(next))
	}
	if next == model.StatusPending {
		return nil, apperrors.InvalidTransition("any", string(model.StatusPending))
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == next && !booking.Status.Terminal() {
		// Repeated confirms happen with retried Telegram callbacks.
		// Terminal states fall through and fail as invalid transitions.
		return booking, nil
	}
	if !validTransition(booking.Status, next) {
		return nil, apperrors.InvalidTransition(string(booking.Status), string(next))
	}
	if err := authorizeTransition(actor, booking, next); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, booking.Status, next); err != nil {
		if errors.Is(err, bookingerrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking status changed concurrently, please retry")
		}
		s.cfg.Log.Error("Failed to update booking status",
			"id", id, "from", booking.Status, "to", next, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	prev := booking.Status
	booking.Status = next
	s.cfg.Log.Info("Booking status changed",
		"id", id,
		"from", prev,
		"to", next,
		"actor_role", actor.Role,
	)

	s.notifyStatusChange(ctx, actor, booking, next)

	return booking, nil
}

// Cancel is the DELETE shortcut; same policy as a status update to cancelled.
func (s *bookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return s.ChangeStatus(ctx, actor, id, model.StatusCancelled)
}

func (s *bookingService) notifyStatusChange(ctx context.Context, actor model.Actor, booking *model.Booking, next model.BookingStatus) {
	ec, err := s.resolveEventContext(ctx, booking)
	if err != nil {
		s.cfg.Log.Warn("Skipping status event, context lookup failed",
			"booking_id", booking.ID, "status", next, "error", err)
		return
	}

	switch next {
	case model.StatusConfirmed:
		s.publishConfirmed(booking, ec)
	case model.StatusCancelled:
		s.publishCancelled(booking, ec, cancelledBy(actor))
	}
	// Completion is bookkeeping only, nobody gets notified.
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.Validation("Booking ID cannot be empty", nil)
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidData("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// authorizeView lets clients and masters read only their own bookings.
func authorizeView(actor model.Actor, booking *model.Booking) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleClient:
		if actor.ID == booking.ClientID {
			return nil
		}
	case model.RoleMaster:
		if actor.ID == booking.MasterID {
			return nil
		}
	}
	return apperrors.PermissionDenied("You do not have access to this booking")
}
