package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "salonbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultSalonTimezone = "Local"

	DefaultSlotGranularityMin        = 30
	DefaultDefaultServiceDurationMin = 60
	DefaultBookingBufferMin          = 30

	DefaultReminderScanHorizon  = 25 * time.Hour
	DefaultReminderCronInterval = 5 * time.Minute

	DefaultNotifyTimeout = 5 * time.Second

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

// Reminder windows, measured as time until the appointment. A reminder is
// sent once while hoursUntil falls inside the window, guarded by the
// persisted per-booking flag.
const (
	Reminder24WindowLow  = 23 * time.Hour
	Reminder24WindowHigh = 25 * time.Hour
	Reminder2WindowLow   = 90 * time.Minute
	Reminder2WindowHigh  = 150 * time.Minute
)
