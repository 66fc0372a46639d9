// Package broker relays order events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives order lifecycle events
const DefaultTopic = "streetmart.order-events"

// messageWriter is subset of *kafka.Writer used by Publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// eventMessage is event as it is published
type eventMessage struct {
	ID         int64              `json:"id"`
	OrderID    string             `json:"order_id"`
	Type       string             `json:"type"`
	ActorID    string             `json:"actor_id,omitempty"`
	FromStatus models.OrderStatus `json:"from_status,omitempty"`
	ToStatus   models.OrderStatus `json:"to_status,omitempty"`
	Payload    json.RawMessage    `json:"payload,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Publisher writes order events to Kafka topic
type Publisher struct {
	writer messageWriter
}

// ParseBrokers splits comma separated broker list
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewPublisher creates Publisher writing to topic on brokers
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes events keyed by order id, so events of one order keep their order in partition
func (p *Publisher) Publish(ctx context.Context, events []models.OrderEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(eventMessage{
			ID:         e.ID,
			OrderID:    e.OrderID,
			Type:       e.Type,
			ActorID:    e.ActorID,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Payload:    e.Payload,
			CreatedAt:  e.CreatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.OrderID),
			Value: value,
			Time:  e.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	return nil
}

// Close flushes and closes writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
