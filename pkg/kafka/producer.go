package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	kafka_config "salonbook/pkg/kafka/config"
	"salonbook/pkg/logger"
)

// ProducerMiddleware wraps message publishing with cross-cutting behavior
type ProducerMiddleware func(next ProducerFunc) ProducerFunc

// ProducerFunc is the core publish function signature
type ProducerFunc func(ctx context.Context, msg Message) error

// Producer publishes domain events to a topic, with an optional DLQ
// for messages that exhaust their delivery attempts.
type Producer struct {
	writer     *kafka.Writer
	dlqWriter  *kafka.Writer
	topic      string
	dlqTopic   string
	middleware []ProducerMiddleware
	logger     *logger.Logger
	closed     bool
	mu         sync.RWMutex
}

type ProducerConfig struct {
	Topic    string
	DLQTopic string // empty disables the DLQ
}

func NewProducer(cfg *kafka_config.Config, producerCfg ProducerConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        producerCfg.Topic,
		Balancer:     &kafka.Hash{}, // consistent partitioning by key
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.ProducerRequireAcks),
		Compression:  parseCompression(cfg.ProducerCompression),
		Async:        cfg.ProducerAsync,
	}

	var dlqWriter *kafka.Writer
	if producerCfg.DLQTopic != "" {
		dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        producerCfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			MaxAttempts:  cfg.ProducerMaxAttempts,
			BatchTimeout: cfg.ProducerBatchTimeout,
			RequiredAcks: kafka.RequiredAcks(cfg.ProducerRequireAcks),
			Compression:  parseCompression(cfg.ProducerCompression),
		}
	}

	return &Producer{
		writer:    writer,
		dlqWriter: dlqWriter,
		topic:     producerCfg.Topic,
		dlqTopic:  producerCfg.DLQTopic,
		logger:    log,
	}
}

// Use adds middleware to the publish chain, executed in the order added.
func (p *Producer) Use(mw ProducerMiddleware) {
	p.middleware = append(p.middleware, mw)
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	publish := p.publishInternal
	for i := len(p.middleware) - 1; i >= 0; i-- {
		publish = p.middleware[i](publish)
	}

	return publish(ctx, msg)
}

func (p *Producer) publishInternal(ctx context.Context, msg Message) error {
	kafkaMsg := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: convertHeaders(msg.Headers),
		Time:    msg.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		p.logger.Error("failed to publish message",
			"topic", p.topic,
			"key", msg.Key,
			"event_type", msg.GetEventType(),
			"error", err,
		)

		if p.dlqWriter != nil {
			if dlqErr := p.sendToDLQ(ctx, msg, err); dlqErr != nil {
				p.logger.Error("failed to send message to DLQ",
					"dlq_topic", p.dlqTopic,
					"key", msg.Key,
					"error", dlqErr,
				)
			}
		}

		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("message published",
		"topic", p.topic,
		"key", msg.Key,
		"event_type", msg.GetEventType(),
	)

	return nil
}

func (p *Producer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	dlqHeaders := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		dlqHeaders[k] = v
	}
	dlqHeaders[HeaderOriginalTopic] = p.topic
	dlqHeaders["error"] = originalErr.Error()

	dlqMsg := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: convertHeaders(dlqHeaders),
		Time:    time.Now(),
	}

	return p.dlqWriter.WriteMessages(ctx, dlqMsg)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	if p.dlqWriter != nil {
		if err := p.dlqWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close DLQ writer: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("producer close: %v", errs)
	}
	return nil
}

func convertHeaders(headers map[string]string) []kafka.Header {
	result := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		result = append(result, kafka.Header{Key: k, Value: []byte(v)})
	}
	return result
}

func parseCompression(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Compression(compress.Gzip)
	case "snappy":
		return kafka.Compression(compress.Snappy)
	case "lz4":
		return kafka.Compression(compress.Lz4)
	case "zstd":
		return kafka.Compression(compress.Zstd)
	default:
		return kafka.Compression(compress.None)
	}
}
