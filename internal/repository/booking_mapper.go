package repository

import (
	"strconv"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
)

// Defaults substituted for fields missing from a stored booking document.
const (
	DefaultVendor        = "Trailhead Adventures"
	DefaultPaymentMethod = "credit_card"
	DefaultTravelers     = 1
)

// toDomainBooking maps a raw document to a Booking. It never fails: any
// absent or mistyped field takes its typed default.
func toDomainBooking(doc docstore.Document, feed bookingDomain.FeedType) *bookingDomain.Booking {
	f := doc.Fields
	if f == nil {
		f = docstore.Fields{}
	}

	tourID := str(f, "tourId")
	tourName := str(f, "tourName")
	if tourName == "" {
		tourName = tourID
	}

	vendor := str(f, "vendor")
	if vendor == "" {
		vendor = DefaultVendor
	}

	travelers := int(num(f, "travelers"))
	if travelers < 1 {
		travelers = DefaultTravelers
	}

	return &bookingDomain.Booking{
		ID:               doc.ID,
		UserID:           str(f, docstore.FieldUserID),
		TourID:           tourID,
		TourName:         tourName,
		TourImage:        str(f, "tourImage"),
		BookingReference: str(f, "bookingReference"),
		StartDate:        f.Time("startDate"),
		EndDate:          f.Time(docstore.FieldEndDate),
		Duration:         duration(f),
		Status:           bookingDomain.ParseBookingStatus(str(f, "status")),
		TotalAmount:      num(f, "totalAmount"),
		Currency:         str(f, "currency"),
		PackageType:      str(f, "packageType"),
		Travelers:        travelers,
		Vendor:           vendor,
		Payment:          toPayment(f),
		Customisation:    toCustomisation(f),
		CreatedAt:        f.Time(docstore.FieldCreatedAt),
		UpdatedAt:        f.Time("updatedAt"),
		Type:             feed,
	}
}

func toPayment(f docstore.Fields) bookingDomain.Payment {
	p, _ := f.Map("payment")
	method := str(p, "method")
	if method == "" {
		method = DefaultPaymentMethod
	}
	return bookingDomain.Payment{
		Method:        method,
		Status:        str(p, "status"),
		TransactionID: str(p, "transactionId"),
	}
}

func toCustomisation(f docstore.Fields) bookingDomain.Customisation {
	c, _ := f.Map("customisation")
	tent, _ := c.Map("tentType")

	raw, _ := c.Slice("addons")
	addons := make([]bookingDomain.Addon, 0, len(raw))
	for _, item := range raw {
		var a docstore.Fields
		switch m := item.(type) {
		case map[string]any:
			a = m
		case docstore.Fields:
			a = m
		default:
			continue
		}
		addons = append(addons, bookingDomain.Addon{
			AddonName:        str(a, "addonName"),
			AddonDescription: str(a, "addonDescription"),
			AddOnPrice:       num(a, "addOnPrice"),
		})
	}

	return bookingDomain.Customisation{
		TentType: bookingDomain.TentType{
			Type:  str(tent, "type"),
			Price: num(tent, "price"),
		},
		Addons: addons,
	}
}

// duration accepts both the "3 days" strings and bare day counts found in
// stored documents.
func duration(f docstore.Fields) string {
	if s, ok := f.String("duration"); ok {
		return s
	}
	if n, ok := f.Number("duration"); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func str(f docstore.Fields, key string) string {
	s, _ := f.String(key)
	return s
}

func num(f docstore.Fields, key string) float64 {
	n, _ := f.Number(key)
	return n
}
