package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
)

func TestToDomainBooking_FullDocument(t *testing.T) {
	raw := `{
		"userId": "u-1",
		"tourId": "tour-9",
		"tourName": "Bromo Sunrise",
		"tourImage": "https://img.example.com/bromo.jpg",
		"bookingReference": "TRP-0042",
		"startDate": {"_seconds": 1748736000, "_nanoseconds": 0},
		"endDate": "2025-06-03T10:00:00Z",
		"duration": 3,
		"status": "confirmed",
		"totalAmount": 450.75,
		"currency": "USD",
		"packageType": "premium",
		"travelers": 2,
		"vendor": "Java Treks",
		"payment": {"method": "paypal", "status": "paid", "transactionId": "tx-1"},
		"customisation": {
			"tentType": {"type": "double", "price": 40},
			"addons": [
				{"addonName": "Porter", "addonDescription": "Carries 15kg", "addOnPrice": 25},
				"ignored"
			]
		},
		"createdAt": 1748000000000,
		"updatedAt": "2025-05-24"
	}`
	var fields docstore.Fields
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))

	bk := toDomainBooking(docstore.Document{ID: "bk-1", Fields: fields}, bookingDomain.FeedUpcoming)

	assert.Equal(t, "bk-1", bk.ID)
	assert.Equal(t, "Bromo Sunrise", bk.TourName)
	assert.Equal(t, "3", bk.Duration)
	assert.Equal(t, 2, bk.Travelers)
	assert.Equal(t, 450.75, bk.TotalAmount)
	assert.Equal(t, "Java Treks", bk.Vendor)
	assert.Equal(t, bookingDomain.Payment{Method: "paypal", Status: "paid", TransactionID: "tx-1"}, bk.Payment)
	assert.Equal(t, bookingDomain.TentType{Type: "double", Price: 40}, bk.Customisation.TentType)
	require.Len(t, bk.Customisation.Addons, 1)
	assert.Equal(t, 25.0, bk.Customisation.Addons[0].AddOnPrice)
	assert.True(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Equal(bk.StartDate))
	assert.True(t, time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC).Equal(bk.EndDate))
	assert.True(t, time.UnixMilli(1748000000000).Equal(bk.CreatedAt))
	assert.False(t, bk.UpdatedAt.IsZero())
	assert.Equal(t, bookingDomain.FeedUpcoming, bk.Type)
}

func TestToDomainBooking_MissingFieldsGetDefaults(t *testing.T) {
	bk := toDomainBooking(docstore.Document{ID: "bk-2", Fields: docstore.Fields{"tourId": "tour-1"}}, bookingDomain.FeedPast)

	assert.Equal(t, 1, bk.Travelers)
	assert.Equal(t, "credit_card", bk.Payment.Method)
	assert.Equal(t, "", bk.Payment.Status)
	assert.NotNil(t, bk.Customisation.Addons)
	assert.Empty(t, bk.Customisation.Addons)
	assert.Equal(t, DefaultVendor, bk.Vendor)
	assert.Equal(t, "tour-1", bk.TourName, "tour name falls back to the tour id")
	assert.Equal(t, 0.0, bk.TotalAmount)
	assert.Equal(t, "", bk.Currency)
	assert.True(t, bk.EndDate.IsZero())
	assert.Equal(t, bookingDomain.FeedPast, bk.Type)
}

func TestToDomainBooking_NilFieldsAndBadTravelers(t *testing.T) {
	bk := toDomainBooking(docstore.Document{ID: "bk-3"}, bookingDomain.FeedPast)
	assert.Equal(t, 1, bk.Travelers)

	bk = toDomainBooking(docstore.Document{ID: "bk-4", Fields: docstore.Fields{"travelers": 0.0}}, bookingDomain.FeedPast)
	assert.Equal(t, 1, bk.Travelers)
}
