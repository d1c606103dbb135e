package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
	"github.com/trailhead/service-bookings/internal/identity"
	"github.com/trailhead/service-bookings/internal/platform/domain"
)

// BookingsCollection is the collection bookings are stored in.
const BookingsCollection = "bookings"

// DocumentBookingRepository is the document-store implementation of BookingRepository.
type DocumentBookingRepository struct {
	store    docstore.Store
	identity identity.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentBookingRepository creates a new DocumentBookingRepository.
func NewDocumentBookingRepository(store docstore.Store, provider identity.Provider, logger *zap.Logger) *DocumentBookingRepository {
	return &DocumentBookingRepository{
		store:    store,
		identity: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to split upcoming from past.
func (r *DocumentBookingRepository) WithClock(now func() time.Time) *DocumentBookingRepository {
	r.now = now
	return r
}

// GetUpcomingBookings returns bookings with endDate >= now, soonest-ending first.
func (r *DocumentBookingRepository) GetUpcomingBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	return r.feedPage(ctx, bookingDomain.FeedUpcoming, pageSize, cursor)
}

// GetPastBookings returns bookings with endDate < now, most recently ended first.
func (r *DocumentBookingRepository) GetPastBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	return r.feedPage(ctx, bookingDomain.FeedPast, pageSize, cursor)
}

// GetAllBookingsOrderedByCreatedAt returns all of the user's bookings, newest first.
func (r *DocumentBookingRepository) GetAllBookingsOrderedByCreatedAt(ctx context.Context) ([]*bookingDomain.Booking, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	res, err := r.store.Query(ctx, docstore.Query{
		Collection: BookingsCollection,
		Filters:    []docstore.Filter{{Field: docstore.FieldUserID, Op: docstore.OpEq, Value: userID}},
		OrderBy:    docstore.OrderBy{Field: docstore.FieldCreatedAt, Direction: docstore.Desc},
	})
	if err != nil {
		return nil, r.queryError("history", userID, err)
	}

	now := r.now()
	bookings := make([]*bookingDomain.Booking, len(res.Documents))
	for i, doc := range res.Documents {
		bookings[i] = toDomainBooking(doc, bookingDomain.FeedFor(doc.Fields.Time(docstore.FieldEndDate), now))
	}
	return bookings, nil
}

func (r *DocumentBookingRepository) feedPage(ctx context.Context, feed bookingDomain.FeedType, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = bookingDomain.DefaultPageSize
	}

	res, err := r.store.Query(ctx, feedQuery(feed, userID, r.now(), pageSize, cursor))
	if err != nil {
		return nil, r.queryError(feed.String(), userID, err)
	}

	bookings := make([]*bookingDomain.Booking, len(res.Documents))
	for i, doc := range res.Documents {
		bookings[i] = toDomainBooking(doc, feed)
	}
	return &bookingDomain.Page{
		Bookings: bookings,
		LastDoc:  res.Last,
		HasMore:  res.HasMore,
	}, nil
}

// feedQuery builds the store query behind a feed. The two feeds differ in
// range operator and direction, which also gives their cursors distinct scopes.
func feedQuery(feed bookingDomain.FeedType, userID string, now time.Time, pageSize int, cursor *docstore.Cursor) docstore.Query {
	op, dir := docstore.OpGte, docstore.Asc
	if feed == bookingDomain.FeedPast {
		op, dir = docstore.OpLt, docstore.Desc
	}
	return docstore.Query{
		Collection: BookingsCollection,
		Filters: []docstore.Filter{
			{Field: docstore.FieldUserID, Op: docstore.OpEq, Value: userID},
			{Field: docstore.FieldEndDate, Op: op, Value: now},
		},
		OrderBy: docstore.OrderBy{Field: docstore.FieldEndDate, Direction: dir},
		Limit:   pageSize,
		After:   cursor,
	}
}

func (r *DocumentBookingRepository) currentUserID(ctx context.Context) (string, error) {
	user, ok := r.identity.CurrentUser(ctx)
	if !ok {
		return "", domain.NewNotAuthenticatedError()
	}
	return user.ID, nil
}

func (r *DocumentBookingRepository) queryError(feed, userID string, err error) error {
	if errors.Is(err, docstore.ErrInvalidCursor) {
		return domain.NewValidationError("invalid pagination cursor")
	}
	r.logger.Error("booking query failed",
		zap.String("feed", feed),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	return domain.NewQueryFailedError(err)
}
