package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
	"github.com/trailhead/service-bookings/internal/platform/domain"
)

type mockBookingRepository struct {
	mock.Mock
}

func (m *mockBookingRepository) GetUpcomingBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	args := m.Called(ctx, pageSize, cursor)
	page, _ := args.Get(0).(*bookingDomain.Page)
	return page, args.Error(1)
}

func (m *mockBookingRepository) GetPastBookings(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error) {
	args := m.Called(ctx, pageSize, cursor)
	page, _ := args.Get(0).(*bookingDomain.Page)
	return page, args.Error(1)
}

func (m *mockBookingRepository) GetAllBookingsOrderedByCreatedAt(ctx context.Context) ([]*bookingDomain.Booking, error) {
	args := m.Called(ctx)
	bookings, _ := args.Get(0).([]*bookingDomain.Booking)
	return bookings, args.Error(1)
}

func pageOf(feed bookingDomain.FeedType, ids ...string) *bookingDomain.Page {
	p := &bookingDomain.Page{}
	for _, id := range ids {
		p.Bookings = append(p.Bookings, &bookingDomain.Booking{ID: id, Type: feed})
	}
	return p
}

var noCursor *docstore.Cursor

func TestPassThroughUseCases(t *testing.T) {
	ctx := context.Background()
	repo := &mockBookingRepository{}
	up := pageOf(bookingDomain.FeedUpcoming, "a")
	past := pageOf(bookingDomain.FeedPast, "b")
	history := []*bookingDomain.Booking{{ID: "c"}}

	repo.On("GetUpcomingBookings", ctx, 5, noCursor).Return(up, nil).Once()
	repo.On("GetPastBookings", ctx, 7, noCursor).Return(past, nil).Once()
	repo.On("GetAllBookingsOrderedByCreatedAt", ctx).Return(history, nil).Once()

	got, err := NewGetUpcomingBookingsUseCase(repo).Execute(ctx, 5, nil)
	require.NoError(t, err)
	assert.Same(t, up, got)

	got, err = NewGetPastBookingsUseCase(repo).Execute(ctx, 7, nil)
	require.NoError(t, err)
	assert.Same(t, past, got)

	all, err := NewGetBookingHistoryUseCase(repo).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, history, all)

	repo.AssertExpectations(t)
}

func TestGetAllBookings_BothFeeds(t *testing.T) {
	ctx := context.Background()
	repo := &mockBookingRepository{}
	repo.On("GetUpcomingBookings", ctx, 10, noCursor).Return(pageOf(bookingDomain.FeedUpcoming, "u1", "u2"), nil)
	repo.On("GetPastBookings", ctx, 10, noCursor).Return(pageOf(bookingDomain.FeedPast, "p1"), nil)

	all, err := NewGetAllBookingsUseCase(repo, zap.NewNop()).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Upcoming.Bookings, 2)
	assert.Len(t, all.Past.Bookings, 1)
	assert.NoError(t, all.UpcomingErr)
	assert.NoError(t, all.PastErr)
	repo.AssertExpectations(t)
}

func TestGetAllBookings_PastFailsUpcomingSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := &mockBookingRepository{}
	pastErr := domain.NewQueryFailedError(errors.New("index missing"))
	repo.On("GetUpcomingBookings", ctx, 10, noCursor).Return(pageOf(bookingDomain.FeedUpcoming, "u1"), nil)
	repo.On("GetPastBookings", ctx, 10, noCursor).Return(nil, pastErr)

	core, logs := observer.New(zap.WarnLevel)
	all, err := NewGetAllBookingsUseCase(repo, zap.New(core)).Execute(ctx)

	require.NoError(t, err, "one failed feed no longer rejects the combined call")
	assert.Len(t, all.Upcoming.Bookings, 1)
	assert.Nil(t, all.Past)
	assert.ErrorIs(t, all.Err(bookingDomain.FeedPast), domain.ErrQueryFailed)
	assert.Equal(t, 1, logs.FilterField(zap.String("feed", "past")).Len())
}

func TestGetAllBookings_BothFail(t *testing.T) {
	ctx := context.Background()
	repo := &mockBookingRepository{}
	repo.On("GetUpcomingBookings", ctx, 10, noCursor).Return(nil, domain.NewNotAuthenticatedError())
	repo.On("GetPastBookings", ctx, 10, noCursor).Return(nil, domain.NewNotAuthenticatedError())

	all, err := NewGetAllBookingsUseCase(repo, zap.NewNop()).Execute(ctx)
	assert.Nil(t, all)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestToPageDTO(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &bookingDomain.Page{
		Bookings: []*bookingDomain.Booking{{
			ID:            "bk-1",
			EndDate:       end,
			Type:          bookingDomain.FeedUpcoming,
			Customisation: bookingDomain.Customisation{Addons: []bookingDomain.Addon{
				{AddonName: "Porter", AddOnPrice: 25},
				{AddonName: "Sleeping bag", AddOnPrice: 7.5},
			}},
		}},
		HasMore: true,
	}

	dto := ToPageDTO(p)
	require.Len(t, dto.Bookings, 1)
	assert.Equal(t, "upcoming", dto.Bookings[0].Type)
	assert.Equal(t, "Porter", dto.Bookings[0].Customisation.Addons[0].AddonName)
	assert.Equal(t, 32.5, dto.Bookings[0].Customisation.AddonsTotal)
	assert.Equal(t, "", dto.NextCursor, "no cursor without a last document")
	assert.True(t, dto.HasMore)

	assert.NotNil(t, ToPageDTO(nil).Bookings)
}

func TestGetAllBookings_FailedFeedDoesNotCancelTheOther(t *testing.T) {
	ctx := context.Background()
	repo := &mockBookingRepository{}
	pastFailed := make(chan struct{})
	repo.On("GetPastBookings", ctx, 10, noCursor).
		Run(func(mock.Arguments) { close(pastFailed) }).
		Return(nil, domain.NewQueryFailedError(errors.New("timeout")))
	repo.On("GetUpcomingBookings", ctx, 10, noCursor).
		Run(func(args mock.Arguments) {
			<-pastFailed
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(pageOf(bookingDomain.FeedUpcoming, "u1", "u2"), nil)

	all, err := NewGetAllBookingsUseCase(repo, zap.NewNop()).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Upcoming.Bookings, 2)
	assert.Error(t, all.Err(bookingDomain.FeedPast))
}
