package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Topic carrying all booking domain events, keyed by booking id.
	DefaultBookingEventsTopic = "salonbook.booking-events"
	DefaultBookingEventsDLQ   = "salonbook.booking-events.dlq"
	DefaultNotifierGroupID    = "salonbook-notifier"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultConsumerStartOffset      = -1 // Newest messages
	DefaultConsumerMinBytes         = 1
	DefaultConsumerMaxBytes         = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait          = 500 * time.Millisecond
	DefaultConsumerCommitInterval   = 1 * time.Second
	DefaultConsumerSessionTimeout   = 10 * time.Second
	DefaultConsumerRebalanceTimeout = 60 * time.Second
	DefaultConsumerMaxRetries       = 3
)
