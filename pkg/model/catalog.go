package model

import "time"

// Master is a service provider. ServiceIDs lists the services the master is
// qualified to perform.
type Master struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Nickname   string    `json:"nickname,omitempty" bson:"nickname,omitempty" validate:"omitempty,max=50"`
	ChatID     int64     `json:"chat_id,omitempty" bson:"chat_id,omitempty"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
	ServiceIDs []string  `json:"service_ids" bson:"service_ids" validate:"omitempty,dive,mongodb"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// DisplayName prefers the public nickname over the real name.
func (m *Master) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name
}

// Service is a bookable offering. Price and DurationMin are the live values;
// bookings copy them at creation time.
type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category    string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Price       int       `json:"price" bson:"price" validate:"min=0"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Client is a booking customer. ChatID is the outbound notification address.
type Client struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	ChatID    int64     `json:"chat_id,omitempty" bson:"chat_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
