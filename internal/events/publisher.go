package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/gdgoc-itb/lms-service/internal/config"
)

// WatermillEventPublisher publishes events to a single topic through any watermill publisher.
type WatermillEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
	now       func() time.Time
}

func NewWatermillEventPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		now:       time.Now,
	}
}

// NewKafkaEventPublisher publishes to the configured Kafka brokers.
func NewKafkaEventPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*WatermillEventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewWatermillEventPublisher(publisher, cfg.Topic, logger), nil
}

// NewInProcessEventPublisher publishes on an in-memory channel. The returned
// GoChannel doubles as the subscriber for local consumers.
func NewInProcessEventPublisher(topic string, logger *slog.Logger) (*WatermillEventPublisher, *gochannel.GoChannel) {
	channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return NewWatermillEventPublisher(channel, topic, logger), channel
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	event := newEvent(eventType, data, p.now())

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("type", eventType)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	p.logger.Debug("Event published", "type", eventType, "event_id", event.ID, "topic", p.topic)
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

func newEvent(eventType string, data interface{}, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: at.UTC(),
		Data:      data,
	}
}

// NewEventPublisher picks Kafka when brokers are configured and the in-process
// channel otherwise. In-process events are drained into the log.
func NewEventPublisher(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (EventPublisher, error) {
	if len(cfg.Brokers) > 0 {
		return NewKafkaEventPublisher(cfg, logger)
	}

	publisher, channel := NewInProcessEventPublisher(cfg.Topic, logger)
	if err := StartLogSink(ctx, channel, cfg.Topic, logger); err != nil {
		_ = publisher.Close()
		return nil, err
	}
	return publisher, nil
}

// StartLogSink consumes topic and logs every event it sees.
func StartLogSink(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			logger.Info("Event received",
				"event_id", msg.UUID,
				"type", msg.Metadata.Get("type"),
				"bytes", len(msg.Payload))
			msg.Ack()
		}
	}()
	return nil
}
