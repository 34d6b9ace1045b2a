package service

import (
	"context"

	"salonbook/pkg/events"
	"salonbook/pkg/kafka"
	"salonbook/pkg/model"
)

// EventPublisher is the slice of the Kafka producer the booking service
// needs; narrowed for testability.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// eventContext carries the denormalized names and chat IDs an event
// payload needs, resolved once per operation.
type eventContext struct {
	client  *model.Client
	master  *model.Master
	service *model.Service
}

func (s *bookingService) resolveEventContext(ctx context.Context, booking *model.Booking) (*eventContext, error) {
	client, err := s.catalogRepo.FindClientByID(ctx, booking.ClientID)
	if err != nil {
		return nil, err
	}
	master, err := s.catalogRepo.FindMasterByID(ctx, booking.MasterID)
	if err != nil {
		return nil, err
	}
	svc, err := s.catalogRepo.FindServiceByID(ctx, booking.ServiceID)
	if err != nil {
		return nil, err
	}
	return &eventContext{client: client, master: master, service: svc}, nil
}

// publishEvent sends one domain event keyed by booking id. Notification
// delivery is fire-and-forget: failures are logged and never surfaced to
// the caller, so a broker outage cannot fail a booking operation.
func (s *bookingService) publishEvent(bookingID, eventType string, payload any) {
	if s.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(bookingID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("salonbook-api").
		Build()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		if err := s.producer.Publish(ctx, msg); err != nil {
			s.cfg.Log.Error("Failed to publish booking event",
				"booking_id", bookingID,
				"event_type", eventType,
				"error", err,
			)
		}
	}()
}

func (s *bookingService) publishCreated(booking *model.Booking, ec *eventContext) {
	s.publishEvent(booking.ID, events.TypeBookingCreated, events.BookingCreated{
		BookingID:    booking.ID,
		ClientID:     booking.ClientID,
		ClientName:   ec.client.Name,
		ClientChatID: ec.client.ChatID,
		MasterID:     booking.MasterID,
		MasterName:   ec.master.DisplayName(),
		MasterChatID: ec.master.ChatID,
		ServiceName:  ec.service.Name,
		Date:         booking.Date,
		StartTime:    booking.StartTime,
	})
}

func (s *bookingService) publishConfirmed(booking *model.Booking, ec *eventContext) {
	s.publishEvent(booking.ID, events.TypeBookingConfirmed, events.BookingConfirmed{
		BookingID:    booking.ID,
		ClientID:     booking.ClientID,
		ClientChatID: ec.client.ChatID,
		MasterName:   ec.master.DisplayName(),
		ServiceName:  ec.service.Name,
		Date:         booking.Date,
		StartTime:    booking.StartTime,
	})
}

func (s *bookingService) publishCancelled(booking *model.Booking, ec *eventContext, by string) {
	s.publishEvent(booking.ID, events.TypeBookingCancelled, events.BookingCancelled{
		BookingID:    booking.ID,
		ClientID:     booking.ClientID,
		ClientName:   ec.client.Name,
		ClientChatID: ec.client.ChatID,
		MasterID:     booking.MasterID,
		MasterName:   ec.master.DisplayName(),
		MasterChatID: ec.master.ChatID,
		ServiceName:  ec.service.Name,
		Date:         booking.Date,
		StartTime:    booking.StartTime,
		CancelledBy:  by,
	})
}
