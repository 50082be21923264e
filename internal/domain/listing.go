package domain

import (
	"time"
)

// Availability describes the stock state of a listing.
type Availability string

const (
	AvailabilityAvailable  Availability = "available"
	AvailabilityLimited    Availability = "limited"
	AvailabilityOutOfStock Availability = "out_of_stock"
)

// IsValidAvailability checks whether the given string is a known availability value.
func IsValidAvailability(a string) bool {
	switch Availability(a) {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityOutOfStock:
		return true
	}
	return false
}

// DeliveryOption describes how a buyer can obtain the product.
type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryDelivery DeliveryOption = "delivery"
)

// IsValidDeliveryOption checks whether the given string is a known delivery option.
func IsValidDeliveryOption(o string) bool {
	switch DeliveryOption(o) {
	case DeliveryPickup, DeliveryDelivery:
		return true
	}
	return false
}

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Listing is a single seller's geolocated product entry. Listings are
// immutable once published; edits from the catalog side arrive as full
// replacement records keyed by ID.
//
// Price and OriginalPrice are in the smallest currency unit (integer cents).
// Rating is undefined, not zero, when ReviewCount is zero.
type Listing struct {
	ID              string           `json:"id"`
	SellerID        string           `json:"seller_id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Category        string           `json:"category"`
	Price           int64            `json:"price"`
	OriginalPrice   *int64           `json:"original_price,omitempty"`
	Location        Point            `json:"location"`
	Availability    Availability     `json:"availability"`
	Rating          float64          `json:"rating"`
	ReviewCount     int              `json:"review_count"`
	IsPromoted      bool             `json:"is_promoted"`
	DeliveryOptions []DeliveryOption `json:"delivery_options"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// HasRating reports whether the listing has a defined rating.
func (l *Listing) HasRating() bool {
	return l.ReviewCount > 0
}

// SupportsDelivery reports whether the listing offers the given option.
func (l *Listing) SupportsDelivery(opt DeliveryOption) bool {
	for _, o := range l.DeliveryOptions {
		if o == opt {
			return true
		}
	}
	return false
}
