package model

import "time"

// BookingLock is an advisory lock closing the check-then-insert race when
// two requests target the same slot. The _id encodes the slot coordinates,
// so a duplicate key error means somebody else holds the slot.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
