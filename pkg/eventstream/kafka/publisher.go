// Package kafka publishes task completion events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/ragbenchco/ragbench/pkg/eventstream"
)

// Publisher writes task events to a Kafka topic, keyed by task ID so
// events for the same task land on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	if topic == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{writer: writer}, nil
}

// PublishTaskCompleted marshals the event and writes it to the topic.
func (p *Publisher) PublishTaskCompleted(ctx context.Context, event *eventstream.TaskCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling task event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.TaskID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publishing task event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
