package ranking

import (
	"sort"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

// Candidate pairs a listing with its query-time distance from the search
// center. Distance is computed per request and never stored.
type Candidate struct {
	Listing    domain.Listing
	DistanceKm float64
}

// Engine orders filtered candidates according to a sort mode. Ranking is
// fully deterministic for identical inputs; every mode carries an id
// tie-break so pagination cursors stay stable.
type Engine struct {
	weights Weights
}

// NewEngine creates a ranking engine with the given relevance weights.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

// Rank scores and orders candidates by sortMode. The input slice is not
// modified. Unknown sort modes fail with InvalidArgument; there is no
// silent fallback to a default.
func (e *Engine) Rank(candidates []Candidate, queryText, sortMode string) ([]domain.RankedResult, error) {
	less, err := e.Comparator(sortMode)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RankedResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.RankedResult{
			Listing:    c.Listing,
			DistanceKm: c.DistanceKm,
		}
		if sortMode == domain.SortRelevance {
			results[i].Score = e.weights.Score(c.Listing, c.DistanceKm, queryText)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
	return results, nil
}

// LessFunc reports whether a ranks strictly before b.
type LessFunc func(a, b domain.RankedResult) bool

// Comparator returns the total ordering for a sort mode. Every ordering
// ends in an id tie-break, so for distinct listings exactly one of
// less(a,b) and less(b,a) holds.
func (e *Engine) Comparator(sortMode string) (LessFunc, error) {
	switch sortMode {
	case domain.SortRelevance:
		return func(a, b domain.RankedResult) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	case domain.SortDistance:
		return func(a, b domain.RankedResult) bool {
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	case domain.SortPriceLow:
		return func(a, b domain.RankedResult) bool {
			if a.Listing.Price != b.Listing.Price {
				return a.Listing.Price < b.Listing.Price
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	case domain.SortPriceHigh:
		return func(a, b domain.RankedResult) bool {
			if a.Listing.Price != b.Listing.Price {
				return a.Listing.Price > b.Listing.Price
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	case domain.SortNewest:
		return func(a, b domain.RankedResult) bool {
			if !a.Listing.CreatedAt.Equal(b.Listing.CreatedAt) {
				return a.Listing.CreatedAt.After(b.Listing.CreatedAt)
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	case domain.SortRating:
		// Listings without reviews sort last, as unrated rather than as
		// rating zero.
		return func(a, b domain.RankedResult) bool {
			aHas, bHas := a.Listing.HasRating(), b.Listing.HasRating()
			if aHas != bHas {
				return aHas
			}
			if aHas && a.Listing.Rating != b.Listing.Rating {
				return a.Listing.Rating > b.Listing.Rating
			}
			if a.Listing.ReviewCount != b.Listing.ReviewCount {
				return a.Listing.ReviewCount > b.Listing.ReviewCount
			}
			return a.Listing.ID < b.Listing.ID
		}, nil

	default:
		return nil, apperrors.InvalidArgumentf("unknown sort mode %q", sortMode)
	}
}
