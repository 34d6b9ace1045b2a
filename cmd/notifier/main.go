package main

import (
	"context"
	"os/signal"
	"syscall"

	"salonbook/internal/notify"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
)

const ServiceName = "salonbook-notifier"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting notifier service")

	worker := notify.NewWorker(newNotifier(cfg), cfg.Log)

	kafkaCfg := kafka_config.Load()
	consumer := kafka.NewConsumer(kafkaCfg, kafka.ConsumerConfig{
		Topic:    kafka_config.DefaultBookingEventsTopic,
		GroupID:  kafka_config.DefaultNotifierGroupID,
		DLQTopic: kafka_config.DefaultBookingEventsDLQ,
	}, worker.Handle, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier service stopped")
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.TelegramBotToken == "" {
		cfg.Log.Warn("TELEGRAM_BOT_TOKEN not set, logging notifications instead of sending them")
		return notify.NewConsoleNotifier(cfg.Log)
	}
	return notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.NotifyTimeout, cfg.Log)
}
