package booking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BookingStatus is the lifecycle status assigned by the booking writer.
// Unknown values are kept as-is so new writer statuses still display.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRefunded  BookingStatus = "refunded"
)

var statusLabels = map[BookingStatus]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
	StatusRefunded:  "Refunded",
}

// ParseBookingStatus normalizes a stored status. Case and surrounding space
// are ignored.
func ParseBookingStatus(s string) BookingStatus {
	return BookingStatus(strings.ToLower(strings.TrimSpace(s)))
}

// IsTerminal returns true once the booking can no longer change.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// Label returns the display form of the status. Unknown statuses are
// title-cased with underscores turned into spaces.
func (s BookingStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	if s == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}
