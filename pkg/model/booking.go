package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active statuses occupy a slot on the master's calendar.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is one appointment. Price and DurationMin are snapshots taken from
// the service record at creation time and never follow later service edits.
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID       string        `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	MasterID       string        `json:"master_id" bson:"master_id" validate:"required,mongodb"`
	ServiceID      string        `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	Date           string        `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime      string        `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	DurationMin    int           `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Price          int           `json:"price" bson:"price" validate:"min=0"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	Reminder24Sent bool          `json:"reminder_24h_sent" bson:"reminder_24h_sent"`
	Reminder2Sent  bool          `json:"reminder_2h_sent" bson:"reminder_2h_sent"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// StartAt resolves date + start time to a wall-clock instant in loc.
func (b *Booking) StartAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.StartTime, loc)
}

// BookingCreate is the booking request. An empty MasterID asks the
// allocator to pick the least-loaded qualified master for the slot.
type BookingCreate struct {
	ClientID  string `json:"client_id" validate:"required,mongodb"`
	MasterID  string `json:"master_id,omitempty" validate:"omitempty,mongodb"`
	ServiceID string `json:"service_id" validate:"required,mongodb"`
	Date      string `json:"date" validate:"required,calendar_date"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// BookingFilter narrows role-scoped booking listings. Zero values mean
// no constraint.
type BookingFilter struct {
	ClientID      string
	MasterID      string
	Status        BookingStatus
	FromDate      string
	ShowCompleted bool
}
