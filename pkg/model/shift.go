package model

import "time"

// Shift is a master's declared working window for one calendar date.
// At most one shift exists per (master, date); an inactive shift means the
// master has no bookable slots that day.
type Shift struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MasterID  string    `json:"master_id" bson:"master_id" validate:"required,mongodb"`
	Date      string    `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime string    `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime   string    `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ShiftUpsert struct {
	MasterID  string `json:"master_id" validate:"required,mongodb"`
	Date      string `json:"date" validate:"required,calendar_date"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
}

// BulkShiftUpsert applies the same working window to every (master, date)
// pair in the cross product. Pairs are independent, there is no rollback.
type BulkShiftUpsert struct {
	MasterIDs []string `json:"master_ids" validate:"required,min=1,dive,mongodb"`
	Dates     []string `json:"dates" validate:"required,min=1,dive,calendar_date"`
	StartTime string   `json:"start_time" validate:"required,clock_time"`
	EndTime   string   `json:"end_time" validate:"required,clock_time"`
}

type BulkShiftResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
