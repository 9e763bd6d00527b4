// Package kafka wraps segmentio/kafka-go for publishing engine events.
package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Config holds Kafka connection parameters.
type Config struct {
	Brokers []string
	Topic   string

	// BatchTimeout bounds how long the writer buffers before flushing.
	BatchTimeout time.Duration
}

// Message is one record to publish.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer wraps a kafka-go writer.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer creates a Producer for the configured topic.
func NewProducer(cfg Config) *Producer {
	timeout := cfg.BatchTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: timeout,
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

// Publish writes the messages to the topic.
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafkago.Message, 0, len(msgs))
	for _, m := range msgs {
		km := kafkago.Message{Key: m.Key, Value: m.Value}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}

	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka: write messages: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
