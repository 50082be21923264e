package filter

import (
	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

// Predicate is a pure per-listing filter check.
type Predicate func(domain.Listing) bool

// Validate checks the filter set for internal consistency. Malformed
// filters fail fast with InvalidArgument before any listing is scanned,
// never silently match nothing.
func Validate(f domain.Filters) error {
	if f.PriceMin != nil && *f.PriceMin < 0 {
		return apperrors.InvalidArgument("price_min must be non-negative")
	}
	if f.PriceMax != nil && *f.PriceMax < 0 {
		return apperrors.InvalidArgument("price_max must be non-negative")
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return apperrors.InvalidArgumentf("inverted price range: price_min %d > price_max %d", *f.PriceMin, *f.PriceMax)
	}
	if f.Availability != nil && !domain.IsValidAvailability(string(*f.Availability)) {
		return apperrors.InvalidArgumentf("unknown availability %q", *f.Availability)
	}
	for _, opt := range f.DeliveryOptions {
		if !domain.IsValidDeliveryOption(string(opt)) {
			return apperrors.InvalidArgumentf("unknown delivery option %q", opt)
		}
	}
	return nil
}

// Compile builds the conjunction of all set filters into a single predicate.
// Unset filters are pass-through. Callers must Validate first; Compile
// assumes a consistent filter set.
func Compile(f domain.Filters) Predicate {
	var preds []Predicate

	if f.Category != nil {
		want := *f.Category
		preds = append(preds, func(l domain.Listing) bool {
			return l.Category == want
		})
	}
	if f.PriceMin != nil {
		min := *f.PriceMin
		preds = append(preds, func(l domain.Listing) bool {
			return l.Price >= min
		})
	}
	if f.PriceMax != nil {
		max := *f.PriceMax
		preds = append(preds, func(l domain.Listing) bool {
			return l.Price <= max
		})
	}
	if f.Availability != nil {
		want := *f.Availability
		preds = append(preds, func(l domain.Listing) bool {
			return l.Availability == want
		})
	}
	if len(f.DeliveryOptions) > 0 {
		// Checkbox semantics: the listing must support every requested
		// option, not any one of them.
		opts := f.DeliveryOptions
		preds = append(preds, func(l domain.Listing) bool {
			for _, opt := range opts {
				if !l.SupportsDelivery(opt) {
					return false
				}
			}
			return true
		})
	}
	if f.PromotedOnly {
		preds = append(preds, func(l domain.Listing) bool {
			return l.IsPromoted
		})
	}

	return func(l domain.Listing) bool {
		for _, p := range preds {
			if !p(l) {
				return false
			}
		}
		return true
	}
}

// Apply validates the filter set and returns the listings matching all set
// filters, preserving input order.
func Apply(listings []domain.Listing, f domain.Filters) ([]domain.Listing, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	match := Compile(f)
	out := listings[:0:0]
	for _, l := range listings {
		if match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}
