package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCronSecret = "CRON_SECRET"

	EnvSalonTimezone = "SALON_TIMEZONE"

	EnvSlotGranularityMin        = "SLOT_GRANULARITY_MIN"
	EnvDefaultServiceDurationMin = "DEFAULT_SERVICE_DURATION_MIN"
	EnvBookingBufferMin          = "BOOKING_BUFFER_MIN"

	EnvReminderScanHorizon  = "REMINDER_SCAN_HORIZON"
	EnvReminderCronEnabled  = "REMINDER_CRON_ENABLED"
	EnvReminderCronInterval = "REMINDER_CRON_INTERVAL"

	EnvNotifyTimeout    = "NOTIFY_TIMEOUT"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
