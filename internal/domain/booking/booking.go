package booking

import (
	"time"
)

// Payment describes how a booking was paid.
type Payment struct {
	Method        string
	Status        string
	TransactionID string
}

// TentType is the accommodation option chosen for a tour.
type TentType struct {
	Type  string
	Price float64
}

// Addon is an optional extra purchased with a tour.
type Addon struct {
	AddonName        string
	AddonDescription string
	AddOnPrice       float64
}

// Customisation holds the options a traveller picked on top of the package.
type Customisation struct {
	TentType TentType
	Addons   []Addon
}

// Booking is one reserved tour instance for a traveller. Bookings are written
// by an external system and are read-only in this service.
type Booking struct {
	ID               string
	UserID           string
	TourID           string
	TourName         string
	TourImage        string
	BookingReference string
	StartDate        time.Time
	EndDate          time.Time
	Duration         string
	Status           BookingStatus
	TotalAmount      float64
	Currency         string
	PackageType      string
	Travelers        int
	Vendor           string
	Payment          Payment
	Customisation    Customisation
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Type is the feed the booking was read from. It is derived at query
	// time and never stored.
	Type FeedType
}

// AddonsTotal returns the sum of all add-on prices.
func (b *Booking) AddonsTotal() float64 {
	var total float64
	for _, a := range b.Customisation.Addons {
		total += a.AddOnPrice
	}
	return total
}
