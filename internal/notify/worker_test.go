package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/pkg/events"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
)

type sentMessage struct {
	chatID int64
	text   string
}

type mockNotifier struct {
	sent     []sentMessage
	failWith error
}

func (m *mockNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func eventMessage(eventType string, payload any) kafka.Message {
	return kafka.NewMessage().
		WithKey("booking-1").
		WithValue(payload).
		WithEventType(eventType).
		Build()
}

func createdEvent() events.BookingCreated {
	return events.BookingCreated{
		BookingID:    "booking-1",
		ClientName:   "Анна",
		ClientChatID: 100,
		MasterName:   "Мария",
		MasterChatID: 200,
		ServiceName:  "Маникюр",
		Date:         "2026-09-15",
		StartTime:    "11:00",
	}
}

func TestHandle_BookingCreatedNotifiesClientAndMaster(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingCreated, createdEvent()))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(100), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Запись создана")
	assert.Contains(t, notifier.sent[0].text, "Маникюр")
	assert.Equal(t, int64(200), notifier.sent[1].chatID)
	assert.Contains(t, notifier.sent[1].text, "Новая запись")
	assert.Contains(t, notifier.sent[1].text, "Анна")
}

func TestHandle_BookingConfirmedNotifiesClientOnly(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	event := events.BookingConfirmed{
		BookingID:    "booking-1",
		ClientChatID: 100,
		MasterName:   "Мария",
		ServiceName:  "Маникюр",
		Date:         "2026-09-15",
		StartTime:    "11:00",
	}
	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingConfirmed, event))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(100), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Запись подтверждена")
}

func TestHandle_ClientCancellationNotifiesMasterOnly(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	event := events.BookingCancelled{
		BookingID:    "booking-1",
		ClientName:   "Анна",
		ClientChatID: 100,
		MasterName:   "Мария",
		MasterChatID: 200,
		ServiceName:  "Маникюр",
		Date:         "2026-09-15",
		StartTime:    "11:00",
		CancelledBy:  events.CancelledByClient,
	}
	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingCancelled, event))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(200), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Клиент отменил запись")
}

func TestHandle_MasterCancellationSkipsMaster(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	event := events.BookingCancelled{
		BookingID:    "booking-1",
		ClientChatID: 100,
		MasterChatID: 200,
		ServiceName:  "Маникюр",
		MasterName:   "Мария",
		Date:         "2026-09-15",
		StartTime:    "11:00",
		CancelledBy:  events.CancelledByMaster,
	}
	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingCancelled, event))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(100), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "отменена мастером")
}

func TestHandle_AdminCancellationNotifiesClientOnly(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	event := events.BookingCancelled{
		BookingID:    "booking-1",
		ClientChatID: 100,
		MasterChatID: 200,
		ServiceName:  "Маникюр",
		MasterName:   "Мария",
		Date:         "2026-09-15",
		StartTime:    "11:00",
		CancelledBy:  events.CancelledByAdmin,
	}
	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingCancelled, event))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(100), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "отменена администратором")
}

func TestHandle_ReminderGoesToClient(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	event := events.BookingReminder{
		BookingID:    "booking-1",
		ClientChatID: 100,
		MasterName:   "Мария",
		ServiceName:  "Маникюр",
		Date:         "2026-09-15",
		StartTime:    "11:00",
		HoursLeft:    2,
	}
	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingReminder, event))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].text, "Напоминание")
	assert.Contains(t, notifier.sent[0].text, "через 2 ч.")
}

func TestHandle_UnknownEventTypeIsSkipped(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	err := worker.Handle(context.Background(), eventMessage("booking.unknown", map[string]string{}))

	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestHandle_MalformedPayloadIsNotRetryable(t *testing.T) {
	notifier := &mockNotifier{}
	worker := NewWorker(notifier, testLogger())

	msg := kafka.NewMessage().
		WithKey("booking-1").
		WithEventType(events.TypeBookingCreated).
		Build()
	msg.Value = []byte("{not json")

	err := worker.Handle(context.Background(), msg)

	require.Error(t, err)
	var procErr *kafka.ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.False(t, procErr.Retryable)
}

func TestHandle_DeliveryFailurePropagates(t *testing.T) {
	notifier := &mockNotifier{failWith: errors.New("telegram unavailable")}
	worker := NewWorker(notifier, testLogger())

	err := worker.Handle(context.Background(), eventMessage(events.TypeBookingCreated, createdEvent()))

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "booking-1"))
}
