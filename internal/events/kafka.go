package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/foodeasy/backend/internal/types"
)

// Config holds Kafka configuration
type Config struct {
	Brokers []string
	Topic   string
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes plan lifecycle events to a Kafka topic, keyed by
// owner so that one user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.SugaredLogger
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(cfg Config, log *zap.SugaredLogger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, cfg.Topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, log: log}
}

// PublishPlanGenerated publishes a meal_plan.generated event.
func (p *KafkaPublisher) PublishPlanGenerated(ctx context.Context, evt types.PlanGeneratedEvent) error {
	if evt.Type == "" {
		evt.Type = types.PlanGeneratedEventType
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal plan event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "type", Value: []byte(evt.Type)},
		{Key: "owner_id", Value: []byte(evt.OwnerID.String())},
		{Key: "source", Value: []byte(evt.Source)},
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.OwnerID.String()),
		Value:   data,
		Headers: headers,
	}); err != nil {
		p.log.Errorw("failed to publish plan event", "topic", p.topic, "plan_id", evt.PlanID, "error", err)
		return fmt.Errorf("failed to publish plan event: %w", err)
	}

	p.log.Debugw("published plan event", "topic", p.topic, "plan_id", evt.PlanID, "owner", evt.OwnerID)
	return nil
}

// Close closes the producer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPlanGenerated(context.Context, types.PlanGeneratedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
