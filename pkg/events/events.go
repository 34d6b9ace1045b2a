// Package events defines the booking domain events published to the outbox
// topic and consumed by the notification worker. Payloads carry everything
// the worker needs to render a message so it never reads the database.
package events

import (
	"encoding/json"
	"fmt"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingReminder  = "booking.reminder"
)

// CancelledBy identifies which side of the booking triggered a cancellation.
const (
	CancelledByClient = "client"
	CancelledByMaster = "master"
	CancelledByAdmin  = "admin"
)

type BookingCreated struct {
	BookingID    string `json:"booking_id"`
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	ClientChatID int64  `json:"client_chat_id,omitempty"`
	MasterID     string `json:"master_id"`
	MasterName   string `json:"master_name"`
	MasterChatID int64  `json:"master_chat_id,omitempty"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
}

type BookingConfirmed struct {
	BookingID    string `json:"booking_id"`
	ClientID     string `json:"client_id"`
	ClientChatID int64  `json:"client_chat_id,omitempty"`
	MasterName   string `json:"master_name"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
}

type BookingCancelled struct {
	BookingID    string `json:"booking_id"`
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	ClientChatID int64  `json:"client_chat_id,omitempty"`
	MasterID     string `json:"master_id"`
	MasterName   string `json:"master_name"`
	MasterChatID int64  `json:"master_chat_id,omitempty"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	CancelledBy  string `json:"cancelled_by"`
}

type BookingReminder struct {
	BookingID    string `json:"booking_id"`
	ClientID     string `json:"client_id"`
	ClientChatID int64  `json:"client_chat_id,omitempty"`
	MasterName   string `json:"master_name"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	HoursLeft    int    `json:"hours_left"`
}

func Unmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode event payload: %w", err)
	}
	return t, nil
}
