// Package messaging adapts the kafka producer to the domain event port.
package messaging

import (
	"context"
	"log/slog"

	"github.com/harshitrathi14/LOS-LMS/pkg/events"
	"github.com/harshitrathi14/LOS-LMS/pkg/kafka"
)

// KafkaEventPublisher publishes domain events keyed by aggregate id so one
// account's events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaEventPublisher wires the producer.
func NewKafkaEventPublisher(producer *kafka.Producer, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, logger: logger}
}

// Publish sends the events to the configured topic.
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(evts))
	for _, e := range evts {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID().String()),
			Value: e.Payload(),
			Headers: map[string]string{
				"event_id":       e.EventID().String(),
				"event_type":     e.EventType(),
				"aggregate_type": e.AggregateType(),
			},
		})
	}

	if err := p.producer.Publish(ctx, msgs...); err != nil {
		return err
	}
	p.logger.Debug("published domain events", "count", len(msgs))
	return nil
}
