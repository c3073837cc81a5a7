package event_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/event"
)

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := event.NewMockSink(ctrl)
	second := event.NewMockSink(ctrl)

	e := event.Event{Type: event.EstimateSent, EntityID: uuid.New(), Number: "EST000001", Timestamp: time.Now()}
	delivered := make(chan struct{})

	first.EXPECT().Deliver(gomock.Any(), e).Return(errors.New("smtp down"))
	second.EXPECT().Deliver(gomock.Any(), e).DoAndReturn(func(context.Context, event.Event) error {
		close(delivered)
		return nil
	})

	var logs bytes.Buffer

	d := event.NewDispatcher(zerolog.New(&logs), 4, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	d.Publish(context.Background(), e)

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	d.Wait()

	assert.Contains(t, logs.String(), "smtp down")
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	var logs bytes.Buffer

	d := event.NewDispatcher(zerolog.New(&logs), 1)

	d.Publish(context.Background(), event.Event{Type: event.InvoicePaid})
	d.Publish(context.Background(), event.Event{Type: event.InvoicePaid})

	assert.Contains(t, logs.String(), "event queue full")
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := event.NewMockSink(ctrl)
	sink.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	d := event.NewDispatcher(zerolog.Nop(), 3, sink)
	for range 3 {
		d.Publish(context.Background(), event.Event{Type: event.InvoiceSent})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Run(ctx)
}

func TestLogSink(t *testing.T) {
	var logs bytes.Buffer

	sink := event.NewLogSink(zerolog.New(&logs))
	err := sink.Deliver(context.Background(), event.Event{Type: event.EstimateAccepted, Number: "EST000007"})

	assert.NoError(t, err)
	assert.Contains(t, logs.String(), "estimate.accepted")
	assert.Contains(t, logs.String(), "EST000007")
}
