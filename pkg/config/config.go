package config

import (
	"fmt"
	"os"
	"regexp"
	"salonbook/pkg/client"
	"salonbook/pkg/logger"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	CronSecret string

	SalonTimezone string
	Location      *time.Location

	SlotGranularityMin        int
	DefaultServiceDurationMin int
	BookingBufferMin          int

	ReminderScanHorizon  time.Duration
	ReminderCronEnabled  bool
	ReminderCronInterval time.Duration

	NotifyTimeout    time.Duration
	TelegramBotToken string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// Best effort: a missing .env file just means env vars come from the host.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		CronSecret: getEnvStr(EnvCronSecret, ""),

		SalonTimezone: getEnvStr(EnvSalonTimezone, DefaultSalonTimezone),

		SlotGranularityMin:        getEnvNum(EnvSlotGranularityMin, DefaultSlotGranularityMin),
		DefaultServiceDurationMin: getEnvNum(EnvDefaultServiceDurationMin, DefaultDefaultServiceDurationMin),
		BookingBufferMin:          getEnvNum(EnvBookingBufferMin, DefaultBookingBufferMin),

		ReminderScanHorizon:  getEnvDuration(EnvReminderScanHorizon, DefaultReminderScanHorizon),
		ReminderCronEnabled:  getEnvBool(EnvReminderCronEnabled, false),
		ReminderCronInterval: getEnvDuration(EnvReminderCronInterval, DefaultReminderCronInterval),

		NotifyTimeout:    getEnvDuration(EnvNotifyTimeout, DefaultNotifyTimeout),
		TelegramBotToken: getEnvStr(EnvTelegramBotToken, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	loc, err := time.LoadLocation(cfg.SalonTimezone)
	if err != nil {
		cfg.Log.Fatal("Invalid salon timezone", "timezone", cfg.SalonTimezone, "error", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.SlotGranularityMin <= 0 || cfg.SlotGranularityMin > 120 {
		errs = append(errs, fmt.Sprintf("SlotGranularityMin must be in (0, 120], got: %d", cfg.SlotGranularityMin))
	}
	if cfg.DefaultServiceDurationMin <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultServiceDurationMin must be positive, got: %d", cfg.DefaultServiceDurationMin))
	}
	if cfg.BookingBufferMin < 0 {
		errs = append(errs, fmt.Sprintf("BookingBufferMin cannot be negative, got: %d", cfg.BookingBufferMin))
	}

	if cfg.ReminderScanHorizon < Reminder24WindowHigh {
		errs = append(errs, fmt.Sprintf("ReminderScanHorizon must cover the 24h reminder window (>= %s), got: %s", Reminder24WindowHigh, cfg.ReminderScanHorizon))
	}
	if cfg.ReminderCronEnabled && cfg.ReminderCronInterval <= 0 {
		errs = append(errs, fmt.Sprintf("ReminderCronInterval must be positive when the cron is enabled, got: %s", cfg.ReminderCronInterval))
	}

	if cfg.NotifyTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("NotifyTimeout must be positive, got: %s", cfg.NotifyTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"cron_secret_set", cfg.CronSecret != "",
		"salon_timezone", cfg.SalonTimezone,
		"slot_granularity_min", cfg.SlotGranularityMin,
		"default_service_duration_min", cfg.DefaultServiceDurationMin,
		"booking_buffer_min", cfg.BookingBufferMin,
		"reminder_scan_horizon", cfg.ReminderScanHorizon,
		"reminder_cron_enabled", cfg.ReminderCronEnabled,
		"reminder_cron_interval", cfg.ReminderCronInterval,
		"notify_timeout", cfg.NotifyTimeout,
		"telegram_bot_token_set", cfg.TelegramBotToken != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
