// Package presentation holds the server-side state behind the bookings
// screen: a view-model per traveller that drives the loading, content,
// refreshing, error and empty states, and the mapping of that state to rows.
package presentation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/trailhead/service-bookings/internal/application"
	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
	"github.com/trailhead/service-bookings/internal/platform/domain"
)

// ScreenState is the rendering state of the bookings screen.
type ScreenState string

const (
	StateIdle       ScreenState = "idle"
	StateLoading    ScreenState = "loading"
	StateContent    ScreenState = "content"
	StateRefreshing ScreenState = "refreshing"
	StateError      ScreenState = "error"
	StateEmpty      ScreenState = "empty"
)

// LoadErrorMessage is shown when the screen has nothing to display.
const LoadErrorMessage = "We couldn't load your bookings. Pull to refresh to try again."

// ErrLoadMoreSkipped is returned by LoadMore when no fetch was issued.
var ErrLoadMoreSkipped = errors.New("load more skipped")

// AllBookingsFetcher fetches the first page of both feeds.
type AllBookingsFetcher interface {
	Execute(ctx context.Context) (*application.AllBookings, error)
}

// PageFetcher fetches one page of a single feed.
type PageFetcher interface {
	Execute(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*bookingDomain.Page, error)
}

type feedState struct {
	items   []*bookingDomain.Booking
	cursor  *docstore.Cursor
	hasMore bool
	loading bool
	err     error
}

// BookingsViewModel is the state machine behind one traveller's bookings screen.
// The mutex is never held across a fetch.
type BookingsViewModel struct {
	getAll   AllBookingsFetcher
	fetchers map[bookingDomain.FeedType]PageFetcher
	pageSize int
	logger   *zap.Logger

	mu         sync.Mutex
	state      ScreenState
	message    string
	stale      bool
	generation uint64
	feeds      map[bookingDomain.FeedType]*feedState
}

// NewBookingsViewModel creates a view-model in the idle state.
func NewBookingsViewModel(
	getAll AllBookingsFetcher,
	getUpcoming PageFetcher,
	getPast PageFetcher,
	pageSize int,
	logger *zap.Logger,
) *BookingsViewModel {
	if pageSize <= 0 {
		pageSize = bookingDomain.DefaultPageSize
	}
	return &BookingsViewModel{
		getAll: getAll,
		fetchers: map[bookingDomain.FeedType]PageFetcher{
			bookingDomain.FeedUpcoming: getUpcoming,
			bookingDomain.FeedPast:     getPast,
		},
		pageSize: pageSize,
		logger:   logger,
		state:    StateIdle,
		feeds: map[bookingDomain.FeedType]*feedState{
			bookingDomain.FeedUpcoming: {},
			bookingDomain.FeedPast:     {},
		},
	}
}

// Load performs the initial fetch of both feeds.
func (vm *BookingsViewModel) Load(ctx context.Context) error {
	return vm.fetchFirstPages(ctx, StateLoading)
}

// Refresh re-runs the first-page fetch, keeping the current lists visible
// until it completes and then replacing them.
func (vm *BookingsViewModel) Refresh(ctx context.Context) error {
	return vm.fetchFirstPages(ctx, StateRefreshing)
}

func (vm *BookingsViewModel) fetchFirstPages(ctx context.Context, pending ScreenState) error {
	vm.mu.Lock()
	vm.generation++
	gen := vm.generation
	if pending == StateRefreshing && vm.state == StateIdle {
		pending = StateLoading
	}
	vm.state = pending
	vm.message = ""
	vm.mu.Unlock()

	all, err := vm.getAll.Execute(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.generation {
		return nil
	}

	if err != nil {
		vm.logger.Error("failed to load bookings",
			zap.String("phase", string(pending)),
			zap.String("code", domain.CodeOf(err)),
			zap.Error(err),
		)
		vm.state = StateError
		vm.message = LoadErrorMessage
		return err
	}

	total, failed := 0, 0
	for _, feed := range bookingDomain.Feeds {
		fs := &feedState{}
		if page := all.Page(feed); page != nil {
			fs.items = page.Bookings
			fs.cursor = page.LastDoc
			fs.hasMore = page.HasMore
		}
		if ferr := all.Err(feed); ferr != nil {
			fs.err = ferr
			failed++
		}
		total += len(fs.items)
		vm.feeds[feed] = fs
	}
	vm.stale = false

	switch {
	case total == 0 && failed > 0:
		vm.state = StateError
		vm.message = LoadErrorMessage
	case total == 0:
		vm.state = StateEmpty
	default:
		vm.state = StateContent
	}
	return nil
}

// LoadMore fetches the next page of feed and appends it. It returns
// ErrLoadMoreSkipped without fetching when the screen is not showing content,
// the feed has no more pages, or a fetch for the feed is already running.
// A failed fetch keeps the existing items and cursor and sets a dismissible
// error on the feed.
func (vm *BookingsViewModel) LoadMore(ctx context.Context, feed bookingDomain.FeedType) error {
	fetcher, ok := vm.fetchers[feed]
	if !ok {
		return ErrLoadMoreSkipped
	}

	vm.mu.Lock()
	fs := vm.feeds[feed]
	if vm.state != StateContent || !fs.hasMore || fs.loading {
		vm.mu.Unlock()
		return ErrLoadMoreSkipped
	}
	fs.loading = true
	fs.err = nil
	cursor := fs.cursor
	gen := vm.generation
	vm.mu.Unlock()

	page, err := fetcher.Execute(ctx, vm.pageSize, cursor)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	fs.loading = false
	if gen != vm.generation {
		// A load or refresh started while this page was in flight.
		vm.logger.Debug("discarding stale page", zap.String("feed", feed.String()))
		return nil
	}

	if err != nil {
		vm.logger.Warn("failed to load more bookings",
			zap.String("feed", feed.String()),
			zap.String("code", domain.CodeOf(err)),
			zap.Error(err),
		)
		fs.err = err
		return err
	}

	fs.items = append(fs.items, page.Bookings...)
	if page.LastDoc != nil {
		fs.cursor = page.LastDoc
	}
	fs.hasMore = page.HasMore
	return nil
}

// DismissError clears the transient error shown on feed.
func (vm *BookingsViewModel) DismissError(feed bookingDomain.FeedType) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if fs, ok := vm.feeds[feed]; ok {
		fs.err = nil
	}
}

// MarkStale flags the displayed data as outdated until the next load or refresh.
func (vm *BookingsViewModel) MarkStale() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.stale = true
}

// FeedSnapshot is an immutable copy of one feed's state.
type FeedSnapshot struct {
	Feed     bookingDomain.FeedType
	Items    []*bookingDomain.Booking
	HasMore  bool
	Loading  bool
	Err      error
	NextPage *docstore.Cursor
}

// CanLoadMore reports whether LoadMore would issue a fetch for this feed.
func (f FeedSnapshot) CanLoadMore() bool {
	return f.HasMore && !f.Loading
}

// Snapshot is an immutable copy of the view-model state.
type Snapshot struct {
	State    ScreenState
	Message  string
	Stale    bool
	Upcoming FeedSnapshot
	Past     FeedSnapshot
}

// Feed returns the snapshot of feed.
func (s Snapshot) Feed(feed bookingDomain.FeedType) FeedSnapshot {
	if feed == bookingDomain.FeedPast {
		return s.Past
	}
	return s.Upcoming
}

// Snapshot returns a copy of the current state.
func (vm *BookingsViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	snap := func(feed bookingDomain.FeedType) FeedSnapshot {
		fs := vm.feeds[feed]
		items := make([]*bookingDomain.Booking, len(fs.items))
		copy(items, fs.items)
		return FeedSnapshot{
			Feed:     feed,
			Items:    items,
			HasMore:  fs.hasMore,
			Loading:  fs.loading,
			Err:      fs.err,
			NextPage: fs.cursor,
		}
	}

	return Snapshot{
		State:    vm.state,
		Message:  vm.message,
		Stale:    vm.stale,
		Upcoming: snap(bookingDomain.FeedUpcoming),
		Past:     snap(bookingDomain.FeedPast),
	}
}
