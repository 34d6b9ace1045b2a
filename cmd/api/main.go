package main

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	availabilityhandler "salonbook/internal/availability/handler"
	availabilityservice "salonbook/internal/availability/service"
	bookinghandler "salonbook/internal/booking/handler"
	bookingrepo "salonbook/internal/booking/repository"
	bookingservice "salonbook/internal/booking/service"
	bookingvalidator "salonbook/internal/booking/validator"
	cataloghandler "salonbook/internal/catalog/handler"
	catalogrepo "salonbook/internal/catalog/repository"
	catalogservice "salonbook/internal/catalog/service"
	reminderhandler "salonbook/internal/reminder/handler"
	reminderrepo "salonbook/internal/reminder/repository"
	reminderservice "salonbook/internal/reminder/service"
	schedulehandler "salonbook/internal/schedule/handler"
	schedulerepo "salonbook/internal/schedule/repository"
	scheduleservice "salonbook/internal/schedule/service"
	schedulevalidator "salonbook/internal/schedule/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
)

const ServiceName = "salonbook-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting API service")

	producer := newProducer(cfg)

	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)
	shiftRepo := schedulerepo.NewMongoShiftRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)
	reminderRepo := reminderrepo.NewMongoReminderRepository(cfg)

	catalogService := catalogservice.NewCatalogService(catalogRepo, cfg)
	shiftService := scheduleservice.NewShiftService(
		shiftRepo,
		schedulevalidator.NewShiftValidator(cfg.Log),
		cfg,
	)
	availabilityService := availabilityservice.NewAvailabilityService(
		shiftRepo,
		bookingRepo,
		catalogRepo,
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		catalogRepo,
		shiftRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		producer,
		cfg,
	)
	reminderService := reminderservice.NewReminderService(
		reminderRepo,
		catalogRepo,
		producer,
		cfg,
	)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		cataloghandler.NewCatalogHandler(catalogService, cfg.Log),
		schedulehandler.NewShiftHandler(shiftService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		reminderhandler.NewReminderHandler(reminderService, cfg),
	)

	if cfg.ReminderCronEnabled {
		scheduler := startReminderCron(cfg, reminderService)
		serverApp.OnShutdown(func() {
			if err := scheduler.Shutdown(); err != nil {
				cfg.Log.Error("Failed to stop reminder scheduler", "error", err)
			}
		})
	}

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close event producer", "error", err)
		}
		cfg.GracefulShutdown()
	})

	serverApp.Run()
}

func newProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	return kafka.NewProducer(kafkaCfg, kafka.ProducerConfig{
		Topic:    kafka_config.DefaultBookingEventsTopic,
		DLQTopic: kafka_config.DefaultBookingEventsDLQ,
	}, cfg.Log)
}

// startReminderCron runs the reminder scan on an interval for deployments
// without an external cron hitting the trigger endpoint.
func startReminderCron(cfg *config.Config, reminders reminderservice.ReminderService) gocron.Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		cfg.Log.Fatal("Failed to create reminder scheduler", "error", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.ReminderCronInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()

			result, err := reminders.Scan(ctx, time.Now())
			if err != nil {
				cfg.Log.Error("Scheduled reminder scan failed", "error", err)
				return
			}
			cfg.Log.Info("Scheduled reminder scan finished",
				"checked", result.Checked,
				"sent_24h", result.Sent24h,
				"sent_2h", result.Sent2h,
				"errors", result.Errors,
			)
		}),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to schedule reminder scan", "error", err)
	}

	scheduler.Start()
	cfg.Log.Info("Reminder cron started", "interval", cfg.ReminderCronInterval)
	return scheduler
}
