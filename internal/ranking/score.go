package ranking

import (
	"strings"

	"github.com/artiqmind/Lookali/internal/domain"
)

const (
	// neutralRating is the normalized contribution of a listing with no
	// reviews. Missing ratings count as average, not as zero.
	neutralRating = 0.5

	// outOfStockPenalty sinks out-of-stock listings to the bottom of
	// relevance ordering without excluding them from results.
	outOfStockPenalty = -10.0
)

// Weights is the relevance scoring configuration. Each weight scales a
// signal normalized to [0,1].
type Weights struct {
	TextMatch float64 `json:"text_match"`
	Proximity float64 `json:"proximity"`
	Rating    float64 `json:"rating"`
	Promotion float64 `json:"promotion"`
}

// DefaultWeights is the standard relevance configuration.
func DefaultWeights() Weights {
	return Weights{
		TextMatch: 0.4,
		Proximity: 0.3,
		Rating:    0.2,
		Promotion: 0.1,
	}
}

// Score computes the composite relevance score for a listing at the given
// distance from the query center.
func (w Weights) Score(l domain.Listing, distanceKm float64, queryText string) float64 {
	score := w.TextMatch*textMatch(l, queryText) +
		w.Proximity*proximity(distanceKm) +
		w.Rating*ratingSignal(l)

	if l.IsPromoted {
		score += w.Promotion
	}
	if l.Availability == domain.AvailabilityOutOfStock {
		score += outOfStockPenalty
	}
	return score
}

// textMatch is the fraction of query tokens found in the listing name or
// category. An empty query contributes zero for every listing, leaving the
// remaining signals to decide the order.
func textMatch(l domain.Listing, queryText string) float64 {
	tokens := strings.Fields(strings.ToLower(queryText))
	if len(tokens) == 0 {
		return 0
	}

	haystack := strings.ToLower(l.Name) + " " + strings.ToLower(l.Category)
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// proximity maps distance to (0,1], closer is higher.
func proximity(distanceKm float64) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return 1 / (1 + distanceKm)
}

func ratingSignal(l domain.Listing) float64 {
	if !l.HasRating() {
		return neutralRating
	}
	return l.Rating / 5
}
