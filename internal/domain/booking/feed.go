package booking

import (
	"fmt"
	"time"

	"github.com/trailhead/service-bookings/internal/docstore"
)

// DefaultPageSize is the page size used when a caller does not ask for one.
const DefaultPageSize = 10

// FeedType names one of the two independent booking feeds.
type FeedType string

const (
	FeedUpcoming FeedType = "upcoming"
	FeedPast     FeedType = "past"
)

// Feeds lists the feeds in display order.
var Feeds = []FeedType{FeedUpcoming, FeedPast}

// IsValid returns true for a known feed.
func (f FeedType) IsValid() bool {
	return f == FeedUpcoming || f == FeedPast
}

// String returns the string representation of the feed.
func (f FeedType) String() string {
	return string(f)
}

// ParseFeedType converts a string to a FeedType, returning an error if unknown.
func ParseFeedType(s string) (FeedType, error) {
	f := FeedType(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid feed: %s", s)
	}
	return f, nil
}

// FeedFor partitions a booking by its end date: upcoming while it has not
// ended yet (endDate >= now), past afterwards.
func FeedFor(endDate, now time.Time) FeedType {
	if endDate.Before(now) {
		return FeedPast
	}
	return FeedUpcoming
}

// Page is one page of a feed.
type Page struct {
	Bookings []*Booking
	// LastDoc resumes the feed after this page; nil when the page is empty.
	LastDoc *docstore.Cursor
	// HasMore is true when at least one more booking follows this page.
	HasMore bool
}
