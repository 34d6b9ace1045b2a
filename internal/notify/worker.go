package notify

import (
	"context"
	"fmt"

	"salonbook/pkg/events"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
)

// Worker consumes booking events and fans each one out to the affected
// chats. Delivery failures bubble up to the consumer, which retries and
// eventually dead-letters the message.
type Worker struct {
	notifier Notifier
	log      *logger.Logger
}

func NewWorker(notifier Notifier, log *logger.Logger) *Worker {
	return &Worker{
		notifier: notifier,
		log:      log,
	}
}

// Handle implements kafka.MessageHandler.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	w.log.Debug("processing booking event",
		"event_id", msg.GetEventID(),
		"event_type", eventType,
		"key", msg.Key,
	)

	switch eventType {
	case events.TypeBookingCreated:
		return w.handleCreated(ctx, msg)
	case events.TypeBookingConfirmed:
		return w.handleConfirmed(ctx, msg)
	case events.TypeBookingCancelled:
		return w.handleCancelled(ctx, msg)
	case events.TypeBookingReminder:
		return w.handleReminder(ctx, msg)
	default:
		// Unknown types are skipped, not retried: redelivery cannot fix them.
		w.log.Warn("skipping event of unknown type",
			"event_id", msg.GetEventID(),
			"event_type", eventType,
		)
		return nil
	}
}

func (w *Worker) handleCreated(ctx context.Context, msg kafka.Message) error {
	e, err := events.Unmarshal[events.BookingCreated](msg.Value)
	if err != nil {
		return kafka.NewProcessingError(err, msg, false)
	}

	if err := w.notifier.Notify(ctx, e.ClientChatID, ClientBookingCreated(e)); err != nil {
		return fmt.Errorf("notify client about booking %s: %w", e.BookingID, err)
	}
	if err := w.notifier.Notify(ctx, e.MasterChatID, MasterNewBooking(e)); err != nil {
		return fmt.Errorf("notify master about booking %s: %w", e.BookingID, err)
	}
	return nil
}

func (w *Worker) handleConfirmed(ctx context.Context, msg kafka.Message) error {
	e, err := events.Unmarshal[events.BookingConfirmed](msg.Value)
	if err != nil {
		return kafka.NewProcessingError(err, msg, false)
	}

	if err := w.notifier.Notify(ctx, e.ClientChatID, ClientBookingConfirmed(e)); err != nil {
		return fmt.Errorf("notify client about confirmation of booking %s: %w", e.BookingID, err)
	}
	return nil
}

func (w *Worker) handleCancelled(ctx context.Context, msg kafka.Message) error {
	e, err := events.Unmarshal[events.BookingCancelled](msg.Value)
	if err != nil {
		return kafka.NewProcessingError(err, msg, false)
	}

	// Whoever cancelled already knows: clients hear about master and admin
	// cancellations, the master hears about client ones.
	if e.CancelledBy != events.CancelledByClient {
		if err := w.notifier.Notify(ctx, e.ClientChatID, ClientBookingCancelled(e)); err != nil {
			return fmt.Errorf("notify client about cancellation of booking %s: %w", e.BookingID, err)
		}
		return nil
	}

	if err := w.notifier.Notify(ctx, e.MasterChatID, MasterBookingCancelled(e)); err != nil {
		return fmt.Errorf("notify master about cancellation of booking %s: %w", e.BookingID, err)
	}
	return nil
}

func (w *Worker) handleReminder(ctx context.Context, msg kafka.Message) error {
	e, err := events.Unmarshal[events.BookingReminder](msg.Value)
	if err != nil {
		return kafka.NewProcessingError(err, msg, false)
	}

	if err := w.notifier.Notify(ctx, e.ClientChatID, ClientBookingReminder(e)); err != nil {
		return fmt.Errorf("remind client about booking %s: %w", e.BookingID, err)
	}
	return nil
}
