package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafka_config "salonbook/pkg/kafka/config"
	"salonbook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const fetchBackoff = time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic in a consumer group. Each message is handled, retried in place while
// the failure is transient, dead-lettered otherwise, and committed in every case so a poison
// message cannot stall the partition.
type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
		StartOffset:    cfg.ConsumerStartOffset,
		ErrorLogger:    errorLogger(log, topic),
	})

	var dlqWriter messageWriter
	if dlqTopic != "" {
		dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			ErrorLogger:  errorLogger(log, dlqTopic),
		}
	}

	c := newConsumer(reader, dlqWriter, topic, groupID, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	c.retryBackoff = cfg.ConsumerRetryBackoff
	return c, nil
}

func newConsumer(reader messageReader, dlqWriter messageWriter, topic, groupID string, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:    reader,
		dlqWriter: dlqWriter,
		topic:     topic,
		groupID:   groupID,
		handler:   handler,
		log:       log,
	}
}

func (c *Consumer) Topic() string {
	return c.topic
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start blocks until ctx is cancelled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, kafka.ErrGroupClosed) {
				return err
			}
			c.log.Warn("Kafka fetch failed", "topic", c.topic, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(fetchBackoff):
			}
			continue
		}

		msg := fromKafkaMessage(kafkaMsg)
		if err := c.process(ctx, msg); err != nil {
			c.log.Error("Kafka message failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil && ctx.Err() == nil {
			c.log.Error("Kafka commit failed", "topic", c.topic, "offset", kafkaMsg.Offset, "error", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg Message) error {
	c.mu.RLock()
	chain := c.middleware
	c.mu.RUnlock()

	handler := c.handler
	for i := len(chain) - 1; i >= 0; i-- {
		mw := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}

	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if !ShouldRetry(err, retries, c.maxRetries) {
			if c.dlqWriter != nil {
				if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
					return fmt.Errorf("dead-letter failed (%v): %w", dlqErr, err)
				}
				c.log.Warn("Kafka message dead-lettered",
					"topic", c.topic,
					"retries", retries,
					"error_type", ClassifyError(err).String(),
					"error", err,
				)
			}
			return err
		}

		msg.IncrementRetryCount()
		c.log.Info("Retrying Kafka message", "topic", c.topic, "attempt", retries+1, "max", c.maxRetries, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryBackoff * time.Duration(retries+1)):
		}
	}
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers[HeaderDLQError] = originalErr.Error()
	msg.Headers["dlq-consumer-group"] = c.groupID
	msg.Timestamp = time.Now().UTC()

	return c.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg))
}

// Close waits for Start to return, so cancel its context first.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}
