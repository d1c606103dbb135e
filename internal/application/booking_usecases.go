package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
)

// GetUpcomingBookingsUseCase returns one page of the upcoming feed.
type GetUpcomingBookingsUseCase struct {
	repo bookingDomain.BookingRepository
}

// NewGetUpcomingBookingsUseCase creates a new GetUpcomingBookingsUseCase.
func NewGetUpcomingBookingsUseCase(repo bookingDomain.BookingRepository) *GetUpcomingBookingsUseCase {
	return &GetUpcomingBookingsUseCase{repo: repo}
}

// Execute fetches the page after cursor.
func (u *GetUpcomingBookingsUseCase) Execute(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	return u.repo.GetUpcomingBookings(ctx, pageSize, cursor)
}

// GetPastBookingsUseCase returns one page of the past feed.
type GetPastBookingsUseCase struct {
	repo bookingDomain.BookingRepository
}

// NewGetPastBookingsUseCase creates a new GetPastBookingsUseCase.
func NewGetPastBookingsUseCase(repo bookingDomain.BookingRepository) *GetPastBookingsUseCase {
	return &GetPastBookingsUseCase{repo: repo}
}

// Execute fetches the page after cursor.
func (u *GetPastBookingsUseCase) Execute(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	return u.repo.GetPastBookings(ctx, pageSize, cursor)
}

// GetBookingHistoryUseCase returns every booking ordered by creation time.
type GetBookingHistoryUseCase struct {
	repo bookingDomain.BookingRepository
}

// NewGetBookingHistoryUseCase creates a new GetBookingHistoryUseCase.
func NewGetBookingHistoryUseCase(repo bookingDomain.BookingRepository) *GetBookingHistoryUseCase {
	return &GetBookingHistoryUseCase{repo: repo}
}

// Execute fetches the full history.
func (u *GetBookingHistoryUseCase) Execute(ctx context.Context) ([]*bookingDomain.Booking, error) {
	return u.repo.GetAllBookingsOrderedByCreatedAt(ctx)
}

// AllBookings is the first page of both feeds. A feed that failed has a nil
// page and a non-nil error; the other feed is still usable.
type AllBookings struct {
	Upcoming    *bookingDomain.Page
	Past        *bookingDomain.Page
	UpcomingErr error
	PastErr     error
}

// Page returns the page for feed.
func (a *AllBookings) Page(feed bookingDomain.FeedType) *bookingDomain.Page {
	if feed == bookingDomain.FeedPast {
		return a.Past
	}
	return a.Upcoming
}

// Err returns the error for feed.
func (a *AllBookings) Err(feed bookingDomain.FeedType) error {
	if feed == bookingDomain.FeedPast {
		return a.PastErr
	}
	return a.UpcomingErr
}

// GetAllBookingsUseCase fetches the first page of both feeds concurrently.
type GetAllBookingsUseCase struct {
	repo     bookingDomain.BookingRepository
	pageSize int
	logger   *zap.Logger
}

// NewGetAllBookingsUseCase creates a new GetAllBookingsUseCase.
func NewGetAllBookingsUseCase(repo bookingDomain.BookingRepository, logger *zap.Logger) *GetAllBookingsUseCase {
	return &GetAllBookingsUseCase{
		repo:     repo,
		pageSize: bookingDomain.DefaultPageSize,
		logger:   logger,
	}
}

// Execute returns both first pages. It fails only when both feeds fail; a
// single failed feed is reported through AllBookings.
func (u *GetAllBookingsUseCase) Execute(ctx context.Context) (*AllBookings, error) {
	result := &AllBookings{}

	// The group is only a join. Feed errors stay on the result so one failed
	// feed never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		result.Upcoming, result.UpcomingErr = u.repo.GetUpcomingBookings(ctx, u.pageSize, nil)
		return nil
	})
	g.Go(func() error {
		result.Past, result.PastErr = u.repo.GetPastBookings(ctx, u.pageSize, nil)
		return nil
	})
	_ = g.Wait()

	if result.UpcomingErr != nil && result.PastErr != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", errors.Join(result.UpcomingErr, result.PastErr))
	}
	for _, feed := range bookingDomain.Feeds {
		if err := result.Err(feed); err != nil {
			u.logger.Warn("booking feed unavailable, returning partial result",
				zap.String("feed", feed.String()),
				zap.Error(err),
			)
		}
	}
	return result, nil
}
