package service

import (
	"salonbook/pkg/events"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

// authorizeTransition decides whether actor may move booking to next.
// The state machine itself (which transitions exist at all) is checked
// separately; this is only the who-may-do-it policy.
//
//	pending   -> confirmed : booking's master, admin
//	pending   -> cancelled : booking's client, booking's master, admin
//	confirmed -> completed : booking's master, admin
//	confirmed -> cancelled : booking's client, booking's master, admin
func authorizeTransition(actor model.Actor, booking *model.Booking, next model.BookingStatus) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}

	isOwnClient := actor.Role == model.RoleClient && actor.ID == booking.ClientID
	isOwnMaster := actor.Role == model.RoleMaster && actor.ID == booking.MasterID

	switch next {
	case model.StatusConfirmed, model.StatusCompleted:
		if isOwnMaster {
			return nil
		}
		return apperrors.PermissionDenied("Only the booking's master or an admin can do that")
	case model.StatusCancelled:
		if isOwnClient || isOwnMaster {
			return nil
		}
		return apperrors.PermissionDenied("Only the booking's client, master, or an admin can cancel")
	default:
		return apperrors.PermissionDenied("Transition not permitted")
	}
}

// validTransition reports whether the state machine allows from -> to.
func validTransition(from, to model.BookingStatus) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusConfirmed || to == model.StatusCancelled
	case model.StatusConfirmed:
		return to == model.StatusCompleted || to == model.StatusCancelled
	default:
		return false
	}
}

// cancelledBy maps the cancelling actor to the event attribution.
func cancelledBy(actor model.Actor) string {
	switch actor.Role {
	case model.RoleMaster:
		return events.CancelledByMaster
	case model.RoleAdmin:
		return events.CancelledByAdmin
	default:
		return events.CancelledByClient
	}
}
