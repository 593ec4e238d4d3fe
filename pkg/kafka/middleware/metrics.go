package kafka_middleware

import (
	"context"
	"time"

	"salonbook/pkg/kafka"
	"salonbook/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage("produce", msg.Topic, err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage("consume", msg.Topic, err, time.Since(start))
		return err
	}
}
