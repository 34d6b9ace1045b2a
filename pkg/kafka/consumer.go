package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	kafka_config "salonbook/pkg/kafka/config"
	"salonbook/pkg/logger"
)

// Consumer reads messages from a topic as part of a consumer group and
// hands them to a MessageHandler. Failed messages are retried up to
// ConsumerMaxRetries times, then parked in the DLQ if one is configured.
type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	handler    MessageHandler
	topic      string
	dlqTopic   string
	groupID    string
	maxRetries int
	logger     *logger.Logger
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

type ConsumerConfig struct {
	Topic    string
	GroupID  string
	DLQTopic string // empty disables the DLQ
}

func NewConsumer(cfg *kafka_config.Config, consumerCfg ConsumerConfig, handler MessageHandler, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:          cfg.Brokers,
		Topic:            consumerCfg.Topic,
		GroupID:          consumerCfg.GroupID,
		StartOffset:      cfg.ConsumerStartOffset,
		MinBytes:         cfg.ConsumerMinBytes,
		MaxBytes:         cfg.ConsumerMaxBytes,
		MaxWait:          cfg.ConsumerMaxWait,
		CommitInterval:   cfg.ConsumerCommitInterval,
		SessionTimeout:   cfg.ConsumerSessionTimeout,
		RebalanceTimeout: cfg.ConsumerRebalanceTimeout,
	})

	var dlqWriter *kafka.Writer
	if consumerCfg.DLQTopic != "" {
		dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        consumerCfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
	}

	return &Consumer{
		reader:     reader,
		dlqWriter:  dlqWriter,
		handler:    handler,
		topic:      consumerCfg.Topic,
		dlqTopic:   consumerCfg.DLQTopic,
		groupID:    consumerCfg.GroupID,
		maxRetries: cfg.ConsumerMaxRetries,
		logger:     log,
	}
}

// Start runs the fetch loop until the context is cancelled or the
// consumer is closed. It blocks the calling goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		"topic", c.topic,
		"group_id", c.groupID,
	)

	for {
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return ErrConsumerClosed
		}
		c.mu.RUnlock()

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("consumer stopping", "topic", c.topic)
				return nil
			}
			c.logger.Error("failed to fetch message", "topic", c.topic, "error", err)
			continue
		}

		msg := convertMessage(kafkaMsg)

		c.wg.Add(1)
		c.processMessage(ctx, msg, kafkaMsg)
		c.wg.Done()
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg Message, kafkaMsg kafka.Message) {
	err := c.handler(ctx, msg)
	if err == nil {
		if commitErr := c.reader.CommitMessages(ctx, kafkaMsg); commitErr != nil {
			c.logger.Error("failed to commit message",
				"topic", c.topic,
				"offset", kafkaMsg.Offset,
				"error", commitErr,
			)
		}
		return
	}

	retryCount := msg.GetRetryCount()
	c.logger.Warn("message handler failed",
		"topic", c.topic,
		"key", msg.Key,
		"event_type", msg.GetEventType(),
		"retry_count", retryCount,
		"error", err,
	)

	if ShouldRetry(err, retryCount, c.maxRetries) {
		msg.IncrementRetryCount()
		if retryErr := c.retryMessage(ctx, msg); retryErr != nil {
			c.logger.Error("failed to requeue message", "key", msg.Key, "error", retryErr)
		}
	} else if c.dlqWriter != nil {
		if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
			c.logger.Error("failed to send message to DLQ",
				"dlq_topic", c.dlqTopic,
				"key", msg.Key,
				"error", dlqErr,
			)
			// Leave uncommitted so the message is redelivered after restart.
			return
		}
	}

	if commitErr := c.reader.CommitMessages(ctx, kafkaMsg); commitErr != nil {
		c.logger.Error("failed to commit message after failure",
			"topic", c.topic,
			"offset", kafkaMsg.Offset,
			"error", commitErr,
		)
	}
}

// retryMessage re-invokes the handler after a short backoff proportional
// to the retry count. Requeueing through the broker would reorder the
// partition, so retries happen in-process.
func (c *Consumer) retryMessage(ctx context.Context, msg Message) error {
	backoff := time.Duration(msg.GetRetryCount()) * time.Second
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.handler(ctx, msg)
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	dlqHeaders := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		dlqHeaders[k] = v
	}
	dlqHeaders[HeaderOriginalTopic] = c.topic
	dlqHeaders["error"] = originalErr.Error()

	dlqMsg := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: convertHeaders(dlqHeaders),
		Time:    time.Now(),
	}

	return c.dlqWriter.WriteMessages(ctx, dlqMsg)
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	var errs []error
	if err := c.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close reader: %w", err))
	}
	if c.dlqWriter != nil {
		if err := c.dlqWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close DLQ writer: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("consumer close: %v", errs)
	}
	return nil
}

func convertMessage(kafkaMsg kafka.Message) Message {
	headers := make(map[string]string, len(kafkaMsg.Headers))
	for _, h := range kafkaMsg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   headers,
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
}
