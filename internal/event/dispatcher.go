package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const deliverTimeout = 10 * time.Second

// Dispatcher queues events and hands them to its sinks from a single
// worker goroutine. A full queue drops the event with a warning.
type Dispatcher struct {
	sinks []Sink
	queue chan Event
	log   zerolog.Logger
	done  chan struct{}
}

func NewDispatcher(log zerolog.Logger, size int, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks: sinks,
		queue: make(chan Event, size),
		log:   log,
		done:  make(chan struct{}),
	}
}

func (d *Dispatcher) Publish(_ context.Context, e Event) {
	select {
	case d.queue <- e:
	default:
		d.log.Warn().
			Str("type", string(e.Type)).
			Str("entity_id", e.EntityID.String()).
			Msg("event queue full, dropping event")
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is
// already queued and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := s.Deliver(ctx, e)
		cancel()

		if err != nil {
			d.log.Error().
				Err(err).
				Str("type", string(e.Type)).
				Str("entity_id", e.EntityID.String()).
				Msg("delivering event")
		}
	}
}
