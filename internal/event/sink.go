package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogSink writes every event to the log.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, e Event) error {
	s.log.Info().
		Str("type", string(e.Type)).
		Str("entity_id", e.EntityID.String()).
		Str("number", e.Number).
		Str("actor_id", e.ActorID.String()).
		Time("at", e.Timestamp).
		Msg("domain event")

	return nil
}

// Message is the JSON payload published to Pub/Sub.
type Message struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Number    string    `json:"number,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PubSubSink publishes events to a Google Cloud Pub/Sub topic for the
// notification dispatcher.
type PubSubSink struct {
	topic *pubsub.Topic
}

func NewPubSubSink(client *pubsub.Client, topic string) *PubSubSink {
	return &PubSubSink{topic: client.Topic(topic)}
}

func (s *PubSubSink) Deliver(ctx context.Context, e Event) error {
	data, err := json.Marshal(Message{
		Type:      e.Type,
		EntityID:  e.EntityID,
		Number:    e.Number,
		ActorID:   e.ActorID,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": string(e.Type)},
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}

// Stop flushes pending publishes.
func (s *PubSubSink) Stop() {
	s.topic.Stop()
}
