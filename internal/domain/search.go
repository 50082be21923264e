package domain

// Sort modes for search results.
const (
	SortRelevance = "relevance"
	SortDistance  = "distance"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
	SortRating    = "rating"
)

// ValidSortModes returns the list of valid sort modes.
func ValidSortModes() []string {
	return []string{SortRelevance, SortDistance, SortPriceLow, SortPriceHigh, SortNewest, SortRating}
}

// IsValidSort checks whether the given sort string is a valid sort mode.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortModes() {
		if s == sort {
			return true
		}
	}
	return false
}

// Filters holds the optional predicate filters of a search request.
// All set filters are combined with AND semantics.
type Filters struct {
	Category        *string          `json:"category,omitempty"`
	PriceMin        *int64           `json:"price_min,omitempty"`
	PriceMax        *int64           `json:"price_max,omitempty"`
	Availability    *Availability    `json:"availability,omitempty"`
	DeliveryOptions []DeliveryOption `json:"delivery_options,omitempty"`
	PromotedOnly    bool             `json:"promoted_only,omitempty"`
}

// SearchQuery holds all parameters for a search request. It is constructed
// per request and never stored.
type SearchQuery struct {
	Text     string  `json:"text"`
	Center   Point   `json:"center"`
	RadiusKm float64 `json:"radius_km"`
	Filters  Filters `json:"filters"`
	SortMode string  `json:"sort_mode"`
	PageSize int     `json:"page_size"`
	Cursor   string  `json:"cursor,omitempty"`
}

// RankedResult is a single search hit. DistanceKm is computed per request,
// never stored on the listing. Score is populated for relevance mode only.
type RankedResult struct {
	Listing    Listing `json:"listing"`
	DistanceKm float64 `json:"distance_km"`
	Score      float64 `json:"score,omitempty"`
}

// SearchResult holds a page of ranked results. Total is the exact filtered
// candidate count before pagination. An empty Results slice with no error is
// a valid "no results" response, distinct from a failed search.
type SearchResult struct {
	Results    []RankedResult `json:"results"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Total      int            `json:"total"`
	TookMs     int64          `json:"took_ms"`
}
