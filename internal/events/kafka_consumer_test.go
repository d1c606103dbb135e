package events

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trailhead/service-bookings/internal/platform/kafka"
	"github.com/trailhead/service-bookings/internal/presentation"
)

type recordingMarker struct {
	open   map[string]bool
	marked []string
}

func (m *recordingMarker) MarkStale(userID string) bool {
	m.marked = append(m.marked, userID)
	return m.open[userID]
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("booking-writer", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: TopicBookingEvents, Value: raw}
}

func newTestConsumer(sessions StaleMarker) (*BookingChangeConsumer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &BookingChangeConsumer{sessions: sessions, logger: zap.New(core)}, logs
}

func TestHandleMessage_MarksOwnerStale(t *testing.T) {
	for _, eventType := range []string{BookingCreated, BookingUpdated, BookingCancelled} {
		t.Run(eventType, func(t *testing.T) {
			marker := &recordingMarker{open: map[string]bool{"u-1": true}}
			c, logs := newTestConsumer(marker)

			err := c.handleMessage(context.Background(), message(t, eventType, BookingChangedEvent{BookingID: "b-1", UserID: "u-1"}))
			require.NoError(t, err)
			assert.Equal(t, []string{"u-1"}, marker.marked)
			assert.Equal(t, 1, logs.FilterMessage("bookings screen marked stale").Len())
		})
	}
}

func TestHandleMessage_NoOpenSession(t *testing.T) {
	marker := &recordingMarker{}
	c, logs := newTestConsumer(marker)

	require.NoError(t, c.handleMessage(context.Background(), message(t, BookingUpdated, BookingChangedEvent{UserID: "u-9"})))
	assert.Equal(t, []string{"u-9"}, marker.marked)
	assert.Zero(t, logs.FilterMessage("bookings screen marked stale").Len())
}

func TestHandleMessage_SkipsBadInput(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) kafkago.Message
		log  string
	}{
		{
			name: "not json",
			msg:  func(*testing.T) kafkago.Message { return kafkago.Message{Value: []byte("{oops")} },
			log:  "failed to parse cloud event from booking topic",
		},
		{
			name: "unknown type",
			msg: func(t *testing.T) kafkago.Message {
				return message(t, "payment.captured", BookingChangedEvent{UserID: "u-1"})
			},
			log: "ignoring unhandled booking event type",
		},
		{
			name: "missing user",
			msg: func(t *testing.T) kafkago.Message {
				return message(t, BookingCreated, BookingChangedEvent{BookingID: "b-1"})
			},
			log: "failed to parse BookingChangedEvent data",
		},
		{
			name: "data is not an object",
			msg: func(t *testing.T) kafkago.Message {
				return message(t, BookingCreated, []int{1, 2})
			},
			log: "failed to parse BookingChangedEvent data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := &recordingMarker{}
			c, logs := newTestConsumer(marker)

			assert.NoError(t, c.handleMessage(context.Background(), tt.msg(t)), "malformed messages are committed, not retried")
			assert.Empty(t, marker.marked)
			assert.Equal(t, 1, logs.FilterMessage(tt.log).Len())
		})
	}
}

func TestHandleMessage_WithSessionStore(t *testing.T) {
	sessions := presentation.NewSessionStore(func() *presentation.BookingsViewModel {
		return presentation.NewBookingsViewModel(nil, nil, nil, 0, zap.NewNop())
	})
	vm := sessions.Get("u-1")
	c, _ := newTestConsumer(sessions)

	require.NoError(t, c.handleMessage(context.Background(), message(t, BookingCancelled, BookingChangedEvent{BookingID: "b-1", UserID: "u-1"})))
	assert.True(t, vm.Snapshot().Stale)
}
