package presentation

import (
	"fmt"
	"strings"
	"time"

	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
)

// placeholderRows is how many shimmer rows a loading section shows.
const placeholderRows = 3

const (
	emptyTitle   = "No bookings yet"
	emptyMessage = "Trips you book will show up here."
)

var sectionTitles = map[bookingDomain.FeedType]string{
	bookingDomain.FeedUpcoming: "Upcoming trips",
	bookingDomain.FeedPast:     "Past trips",
}

// Row is one visual booking row. Muted rows belong to bookings that can no
// longer change.
type Row struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Image     string `json:"image,omitempty"`
	Reference string `json:"reference,omitempty"`
	Amount    string `json:"amount"`
	Badge     string `json:"badge,omitempty"`
	Muted     bool   `json:"muted,omitempty"`
}

// Section is the rendered form of one feed.
type Section struct {
	Feed         string `json:"feed"`
	Title        string `json:"title"`
	Rows         []Row  `json:"rows"`
	Placeholders int    `json:"placeholders,omitempty"`
	CanLoadMore  bool   `json:"can_load_more"`
	LoadingMore  bool   `json:"loading_more,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Screen is what a client draws for the bookings screen.
type Screen struct {
	State    ScreenState `json:"state"`
	Title    string      `json:"title,omitempty"`
	Message  string      `json:"message,omitempty"`
	Stale    bool        `json:"stale,omitempty"`
	Sections []Section   `json:"sections"`
}

// Render maps a snapshot to a Screen.
func Render(s Snapshot) Screen {
	screen := Screen{
		State:    s.State,
		Message:  s.Message,
		Stale:    s.Stale,
		Sections: []Section{},
	}

	switch s.State {
	case StateIdle:
		return screen
	case StateLoading:
		for _, feed := range bookingDomain.Feeds {
			screen.Sections = append(screen.Sections, Section{
				Feed:         feed.String(),
				Title:        sectionTitles[feed],
				Rows:         []Row{},
				Placeholders: placeholderRows,
			})
		}
		return screen
	case StateEmpty:
		screen.Title = emptyTitle
		screen.Message = emptyMessage
		return screen
	}

	// content, refreshing and error all show whatever data is held.
	for _, feed := range bookingDomain.Feeds {
		fs := s.Feed(feed)
		if len(fs.Items) == 0 && fs.Err == nil {
			continue
		}
		section := Section{
			Feed:        feed.String(),
			Title:       sectionTitles[feed],
			Rows:        make([]Row, 0, len(fs.Items)),
			CanLoadMore: s.State == StateContent && fs.CanLoadMore(),
			LoadingMore: fs.Loading,
		}
		if fs.Err != nil {
			section.Error = fmt.Sprintf("Couldn't load %s bookings.", feed)
		}
		for _, bk := range fs.Items {
			section.Rows = append(section.Rows, renderRow(bk))
		}
		screen.Sections = append(screen.Sections, section)
	}
	return screen
}

func renderRow(bk *bookingDomain.Booking) Row {
	row := Row{
		ID:        bk.ID,
		Title:     bk.TourName,
		Subtitle:  dateRange(bk.StartDate, bk.EndDate),
		Image:     bk.TourImage,
		Reference: bk.BookingReference,
		Amount:    formatAmount(bk.TotalAmount, bk.Currency),
		Badge:     bk.Status.Label(),
		Muted:     bk.Status.IsTerminal(),
	}
	if bk.Travelers > 1 {
		row.Subtitle += fmt.Sprintf(" · %d travelers", bk.Travelers)
	}
	return row
}

func dateRange(start, end time.Time) string {
	switch {
	case start.IsZero() && end.IsZero():
		return "Dates to be confirmed"
	case start.IsZero():
		return "Ends " + end.Format("2 Jan 2006")
	case end.IsZero() || sameDay(start, end):
		return start.Format("2 Jan 2006")
	case start.Year() == end.Year():
		return start.Format("2 Jan") + " - " + end.Format("2 Jan 2006")
	default:
		return start.Format("2 Jan 2006") + " - " + end.Format("2 Jan 2006")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatAmount(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), amount)
}
