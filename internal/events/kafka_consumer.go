package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/trailhead/service-bookings/internal/platform/kafka"
)

// TopicBookingEvents carries change notifications from the booking writer.
const TopicBookingEvents = "booking.events"

// Booking change event types.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

// BookingChangedEvent is the data payload of a booking change event.
type BookingChangedEvent struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
}

// StaleMarker flags a user's open bookings screen as outdated.
type StaleMarker interface {
	MarkStale(userID string) bool
}

// BookingChangeConsumer listens to booking change events and marks the
// owner's screen stale. It never writes bookings.
type BookingChangeConsumer struct {
	consumer *kafka.Consumer
	sessions StaleMarker
	logger   *zap.Logger
}

// NewBookingChangeConsumer creates a new BookingChangeConsumer.
func NewBookingChangeConsumer(
	brokers []string,
	groupID string,
	sessions StaleMarker,
	logger *zap.Logger,
) *BookingChangeConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &BookingChangeConsumer{
		consumer: consumer,
		sessions: sessions,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *BookingChangeConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingChangeConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingChangeConsumer) handleMessage(_ context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingCreated, BookingUpdated, BookingCancelled:
		return c.handleBookingChanged(cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *BookingChangeConsumer) handleBookingChanged(cloudEvent kafka.CloudEvent) error {
	var evt BookingChangedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.UserID == "" {
		c.logger.Error("failed to parse BookingChangedEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if c.sessions.MarkStale(evt.UserID) {
		c.logger.Info("bookings screen marked stale",
			zap.String("user_id", evt.UserID),
			zap.String("booking_id", evt.BookingID),
			zap.String("type", cloudEvent.Type),
		)
	}
	return nil
}
