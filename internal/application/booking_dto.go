package application

import (
	"time"

	bookingDomain "github.com/trailhead/service-bookings/internal/domain/booking"
)

// PaymentDTO is the response representation of a booking payment.
type PaymentDTO struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// TentTypeDTO is the response representation of a tent choice.
type TentTypeDTO struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// AddonDTO is the response representation of an add-on.
type AddonDTO struct {
	AddonName        string  `json:"addon_name"`
	AddonDescription string  `json:"addon_description"`
	AddOnPrice       float64 `json:"add_on_price"`
}

// CustomisationDTO is the response representation of booking customisation.
type CustomisationDTO struct {
	TentType    TentTypeDTO `json:"tent_type"`
	Addons      []AddonDTO  `json:"addons"`
	AddonsTotal float64     `json:"addons_total"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	TourID           string           `json:"tour_id"`
	TourName         string           `json:"tour_name"`
	TourImage        string           `json:"tour_image"`
	BookingReference string           `json:"booking_reference"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Duration         string           `json:"duration"`
	Status           string           `json:"status"`
	TotalAmount      float64          `json:"total_amount"`
	Currency         string           `json:"currency"`
	PackageType      string           `json:"package_type"`
	Travelers        int              `json:"travelers"`
	Vendor           string           `json:"vendor"`
	Payment          PaymentDTO       `json:"payment"`
	Customisation    CustomisationDTO `json:"customisation"`
	Type             string           `json:"type"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// PageDTO is the response representation of a feed page.
type PageDTO struct {
	Bookings   []BookingDTO `json:"bookings"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}

// ToBookingDTO converts a domain booking to its response form.
func ToBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	addons := make([]AddonDTO, len(bk.Customisation.Addons))
	for i, a := range bk.Customisation.Addons {
		addons[i] = AddonDTO{
			AddonName:        a.AddonName,
			AddonDescription: a.AddonDescription,
			AddOnPrice:       a.AddOnPrice,
		}
	}

	return BookingDTO{
		ID:               bk.ID,
		UserID:           bk.UserID,
		TourID:           bk.TourID,
		TourName:         bk.TourName,
		TourImage:        bk.TourImage,
		BookingReference: bk.BookingReference,
		StartDate:        bk.StartDate,
		EndDate:          bk.EndDate,
		Duration:         bk.Duration,
		Status:           bk.Status.String(),
		TotalAmount:      bk.TotalAmount,
		Currency:         bk.Currency,
		PackageType:      bk.PackageType,
		Travelers:        bk.Travelers,
		Vendor:           bk.Vendor,
		Payment: PaymentDTO{
			Method:        bk.Payment.Method,
			Status:        bk.Payment.Status,
			TransactionID: bk.Payment.TransactionID,
		},
		Customisation: CustomisationDTO{
			TentType: TentTypeDTO{
				Type:  bk.Customisation.TentType.Type,
				Price: bk.Customisation.TentType.Price,
			},
			Addons:      addons,
			AddonsTotal: bk.AddonsTotal(),
		},
		Type:      bk.Type.String(),
		CreatedAt: bk.CreatedAt,
		UpdatedAt: bk.UpdatedAt,
	}
}

// ToBookingDTOs converts a slice of bookings.
func ToBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = ToBookingDTO(bk)
	}
	return dtos
}

// ToPageDTO converts a feed page.
func ToPageDTO(p *bookingDomain.Page) PageDTO {
	if p == nil {
		return PageDTO{Bookings: []BookingDTO{}}
	}
	return PageDTO{
		Bookings:   ToBookingDTOs(p.Bookings),
		NextCursor: p.LastDoc.Token(),
		HasMore:    p.HasMore,
	}
}
