package service

import (
	"context"
	"time"

	catalogrepo "salonbook/internal/catalog/repository"
	"salonbook/internal/reminder/repository"
	"salonbook/pkg/config"
	"salonbook/pkg/events"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/kafka"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

// Result reports one scan run.
type Result struct {
	Checked int `json:"checked"`
	Sent24h int `json:"sent_24h"`
	Sent2h  int `json:"sent_2h"`
	Errors  int `json:"errors"`
}

type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReminderService interface {
	// Scan walks upcoming confirmed bookings and sends due reminders.
	// A failure on one booking is counted and does not stop the scan.
	Scan(ctx context.Context, now time.Time) (*Result, error)
}

type reminderService struct {
	repo        repository.ReminderRepository
	catalogRepo catalogrepo.CatalogRepository
	producer    EventPublisher
	cfg         *config.Config
}

func NewReminderService(
	repo repository.ReminderRepository,
	catalogRepo catalogrepo.CatalogRepository,
	producer EventPublisher,
	cfg *config.Config,
) ReminderService {
	return &reminderService{
		repo:        repo,
		catalogRepo: catalogRepo,
		producer:    producer,
		cfg:         cfg,
	}
}

func (s *reminderService) Scan(ctx context.Context, now time.Time) (*Result, error) {
	now = now.In(s.cfg.Location)
	dates := scanDates(now, s.cfg.ReminderScanHorizon)

	candidates, err := s.repo.FindCandidates(ctx, dates)
	if err != nil {
		s.cfg.Log.Error("Reminder scan failed to load candidates", "error", err)
		return nil, apperrors.Internal("Failed to load reminder candidates", err)
	}

	result := &Result{Checked: len(candidates)}

	for _, booking := range candidates {
		startAt, err := booking.StartAt(s.cfg.Location)
		if err != nil {
			s.cfg.Log.Error("Booking has unparseable start", "booking_id", booking.ID, "error", err)
			result.Errors++
			continue
		}

		until := startAt.Sub(now)

		if !booking.Reminder24Sent && within(until, config.Reminder24WindowLow, config.Reminder24WindowHigh) {
			switch sent, err := s.send(ctx, booking, repository.Kind24h, 24); {
			case err != nil:
				result.Errors++
			case sent:
				result.Sent24h++
			}
		}

		if !booking.Reminder2Sent && within(until, config.Reminder2WindowLow, config.Reminder2WindowHigh) {
			switch sent, err := s.send(ctx, booking, repository.Kind2h, 2); {
			case err != nil:
				result.Errors++
			case sent:
				result.Sent2h++
			}
		}
	}

	s.cfg.Log.Info("Reminder scan completed",
		"checked", result.Checked,
		"sent_24h", result.Sent24h,
		"sent_2h", result.Sent2h,
		"errors", result.Errors,
	)
	return result, nil
}

// send claims the reminder flag, then publishes the event. The claim makes
// overlapping scans safe; a publish failure releases the claim so the next
// scan retries.
func (s *reminderService) send(ctx context.Context, booking *model.Booking, kind string, hoursLeft int) (bool, error) {
	claimed, err := s.repo.ClaimReminder(ctx, booking.ID, kind)
	if err != nil {
		s.cfg.Log.Error("Failed to claim reminder", "booking_id", booking.ID, "kind", kind, "error", err)
		return false, err
	}
	if !claimed {
		// Another scan got there first.
		return false, nil
	}

	payload, err := s.buildPayload(ctx, booking, hoursLeft)
	if err == nil {
		msg := kafka.NewMessage().
			WithKey(booking.ID).
			WithValue(payload).
			WithEventType(events.TypeBookingReminder).
			WithSource("salonbook-api").
			Build()
		err = s.producer.Publish(ctx, msg)
	}

	if err != nil {
		s.cfg.Log.Error("Failed to send reminder", "booking_id", booking.ID, "kind", kind, "error", err)
		if releaseErr := s.repo.ReleaseReminder(ctx, booking.ID, kind); releaseErr != nil {
			s.cfg.Log.Error("Failed to release reminder claim",
				"booking_id", booking.ID, "kind", kind, "error", releaseErr)
		}
		return false, err
	}

	return true, nil
}

func (s *reminderService) buildPayload(ctx context.Context, booking *model.Booking, hoursLeft int) (*events.BookingReminder, error) {
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

	return &events.BookingReminder{
		BookingID:    booking.ID,
		ClientID:     booking.ClientID,
		ClientChatID: client.ChatID,
		MasterName:   master.DisplayName(),
		ServiceName:  svc.Name,
		Date:         booking.Date,
		StartTime:    booking.StartTime,
		HoursLeft:    hoursLeft,
	}, nil
}

// scanDates lists the calendar dates the horizon can touch, today included.
func scanDates(now time.Time, horizon time.Duration) []string {
	last := timegrid.Today(now.Add(horizon))
	var dates []string
	for d := timegrid.Today(now); !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(timegrid.DateLayout))
	}
	return dates
}

func within(d, low, high time.Duration) bool {
	return d >= low && d <= high
}
