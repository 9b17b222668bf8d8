package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/model"
)

// DefaultTopic is the topic purchase events are written to unless configured otherwise.
const DefaultTopic = "book-purchased"

const headerEventType = "event-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes purchase events to a Kafka topic, keyed by user ID.
type KafkaPublisher struct {
	w     messageWriter
	topic string
	log   *zap.Logger
}

// NewKafkaPublisher creates a synchronous producer. Each event is attempted once.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            1,
	}
	log.Info("kafka publisher created", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaPublisher{w: w, topic: topic, log: log}
}

// Publish writes ev and waits for broker acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, ev model.PurchaseEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:     []byte(ev.UserID.String()),
		Value:   data,
		Time:    ev.Timestamp,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(ev.EventType)}},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.EventType, p.topic, err)
	}
	p.log.Debug("event published",
		zap.String("topic", p.topic),
		zap.String("event_id", ev.EventID.String()),
		zap.String("entitlement_id", ev.ID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error { return p.w.Close() }

// LogPublisher only logs events; used when no brokers are configured.
type LogPublisher struct{ log *zap.Logger }

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(log *zap.Logger) *LogPublisher { return &LogPublisher{log: log} }

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, ev model.PurchaseEvent) error {
	p.log.Info("event",
		zap.String("type", ev.EventType),
		zap.String("event_id", ev.EventID.String()),
		zap.String("entitlement_id", ev.ID.String()),
		zap.String("user_id", ev.UserID.String()),
		zap.String("book_id", ev.BookID.String()),
		zap.Int("point", ev.Point),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
