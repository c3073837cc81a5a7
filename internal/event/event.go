// Package event publishes domain events for downstream notification.
// Publishing never blocks or fails the mutation that raised the event.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	EstimateSent      Type = "estimate.sent"
	EstimateAccepted  Type = "estimate.accepted"
	EstimateRejected  Type = "estimate.rejected"
	EstimateConverted Type = "estimate.converted"
	InvoiceSent       Type = "invoice.sent"
	InvoicePaid       Type = "invoice.paid"
)

type Event struct {
	Type      Type
	EntityID  uuid.UUID
	Number    string
	ActorID   uuid.UUID
	Timestamp time.Time
}

//go:generate mockgen -source=event.go -destination=publisher_mock.go -package=event
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Sink delivers an event to one destination.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
