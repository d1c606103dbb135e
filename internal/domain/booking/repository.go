package booking

import (
	"context"

	"github.com/trailhead/service-bookings/internal/docstore"
)

// BookingRepository defines the read contract for the current user's bookings.
type BookingRepository interface {
	// GetUpcomingBookings returns bookings that have not ended, soonest-ending first.
	GetUpcomingBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*Page, error)

	// GetPastBookings returns bookings that have ended, most recently ended first.
	GetPastBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*Page, error)

	// GetAllBookingsOrderedByCreatedAt returns every booking, newest first.
	GetAllBookingsOrderedByCreatedAt(ctx context.Context) ([]*Booking, error)
}
