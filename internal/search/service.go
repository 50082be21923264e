package search

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/artiqmind/Lookali/internal/domain"
	"github.com/artiqmind/Lookali/internal/filter"
	"github.com/artiqmind/Lookali/internal/geo"
	"github.com/artiqmind/Lookali/internal/ranking"
	"github.com/artiqmind/Lookali/internal/store"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

// Config bounds search requests. Zero values fall back to the defaults.
type Config struct {
	MaxRadiusKm         float64
	DefaultPageSize     int
	MaxPageSize         int
	MaxPromotedFraction float64
}

// DefaultConfig returns the standard search bounds.
func DefaultConfig() Config {
	return Config{
		MaxRadiusKm:         50,
		DefaultPageSize:     20,
		MaxPageSize:         100,
		MaxPromotedFraction: 0.3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRadiusKm <= 0 {
		c.MaxRadiusKm = d.MaxRadiusKm
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = d.DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.MaxPromotedFraction <= 0 || c.MaxPromotedFraction > 1 {
		c.MaxPromotedFraction = d.MaxPromotedFraction
	}
	return c
}

// Service orchestrates a search request end to end: radius query, attribute
// lookup, filtering, ranking, and cursor pagination. It is stateless per
// call; all state lives in the index and the store.
type Service struct {
	geo    *geo.Index
	store  *store.ListingStore
	ranker *ranking.Engine
	cfg    Config
	logger *slog.Logger
}

// NewService wires a search service over the given index, store, and
// ranking engine.
func NewService(idx *geo.Index, st *store.ListingStore, ranker *ranking.Engine, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		geo:    idx,
		store:  st,
		ranker: ranker,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Search runs a full search. An empty result set is a valid response, never
// an error; errors mean the request itself was bad or the backend failed.
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	start := time.Now()

	q, err := s.normalize(q)
	if err != nil {
		// The sort mode is unvalidated here and must not become a label value.
		searchesTotal.WithLabelValues("unknown", "invalid").Inc()
		return domain.SearchResult{}, err
	}

	var cur cursor
	if q.Cursor != "" {
		cur, err = decodeCursor(q.Cursor, q.SortMode)
		if err != nil {
			searchesTotal.WithLabelValues(q.SortMode, "invalid").Inc()
			return domain.SearchResult{}, err
		}
	}

	result, err := s.run(ctx, q, cur)
	if err != nil {
		searchesTotal.WithLabelValues(q.SortMode, "error").Inc()
		return domain.SearchResult{}, err
	}

	elapsed := time.Since(start)
	result.TookMs = elapsed.Milliseconds()
	searchesTotal.WithLabelValues(q.SortMode, "ok").Inc()
	searchDuration.WithLabelValues(q.SortMode).Observe(elapsed.Seconds())

	s.logger.DebugContext(ctx, "search completed",
		slog.String("sort_mode", q.SortMode),
		slog.Int("total", result.Total),
		slog.Int("returned", len(result.Results)),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// normalize validates the query shape and fills defaults. All validation
// happens before the index is touched.
func (s *Service) normalize(q domain.SearchQuery) (domain.SearchQuery, error) {
	if q.SortMode == "" {
		q.SortMode = domain.SortRelevance
	}
	if !domain.IsValidSort(q.SortMode) {
		return q, apperrors.InvalidArgumentf("unknown sort mode %q", q.SortMode)
	}
	if !q.Center.Valid() {
		return q, apperrors.InvalidArgumentf("invalid center: lat=%g lon=%g", q.Center.Lat, q.Center.Lon)
	}
	if q.RadiusKm <= 0 {
		return q, apperrors.InvalidArgument("radius_km must be positive")
	}
	if q.RadiusKm > s.cfg.MaxRadiusKm {
		return q, apperrors.InvalidArgumentf("radius_km must not exceed %g", s.cfg.MaxRadiusKm)
	}
	if err := filter.Validate(q.Filters); err != nil {
		return q, err
	}

	if q.PageSize <= 0 {
		q.PageSize = s.cfg.DefaultPageSize
	}
	if q.PageSize > s.cfg.MaxPageSize {
		q.PageSize = s.cfg.MaxPageSize
	}
	return q, nil
}

func (s *Service) run(ctx context.Context, q domain.SearchQuery, cur cursor) (domain.SearchResult, error) {
	matches, err := s.geo.WithinRadius(ctx, q.Center, q.RadiusKm)
	if err != nil {
		return domain.SearchResult{}, err
	}
	searchCandidates.Observe(float64(len(matches)))

	ids := make([]string, len(matches))
	distByID := make(map[string]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		distByID[m.ID] = m.DistanceKm
	}

	// Ids the index knows but the store does not are a transient artifact of
	// concurrent deletion; GetMany drops them.
	listings := s.store.GetMany(ids)

	// Filters were validated in normalize; apply the compiled predicate in
	// the same pass that builds candidates, without an intermediate slice.
	match := filter.Compile(q.Filters)
	candidates := make([]ranking.Candidate, 0, len(listings))
	for _, l := range listings {
		if match(l) {
			candidates = append(candidates, ranking.Candidate{Listing: l, DistanceKm: distByID[l.ID]})
		}
	}

	ranked, err := s.ranker.Rank(candidates, q.Text, q.SortMode)
	if err != nil {
		return domain.SearchResult{}, err
	}

	less, err := s.ranker.Comparator(q.SortMode)
	if err != nil {
		return domain.SearchResult{}, err
	}

	page, next := s.paginate(ranked, q, cur, less)
	return domain.SearchResult{
		Results:    page,
		NextCursor: next,
		Total:      len(ranked),
	}, nil
}

// paginate slices one page out of the full ranked ordering. Results are
// split into promoted and organic streams so the promoted-density cap can
// defer excess promoted items to later pages instead of dropping them; the
// cursor tracks each stream independently.
func (s *Service) paginate(ranked []domain.RankedResult, q domain.SearchQuery, cur cursor, less ranking.LessFunc) ([]domain.RankedResult, string) {
	var promoted, organic []domain.RankedResult
	for _, r := range ranked {
		if r.Listing.IsPromoted {
			promoted = append(promoted, r)
		} else {
			organic = append(organic, r)
		}
	}

	promoted = skipTo(promoted, cur.Promoted, less)
	organic = skipTo(organic, cur.Organic, less)

	// The promoted cap only applies to relevance ranking, where promotion
	// boosts the score. Explicit sorts show listings exactly where their
	// sort key puts them.
	promotedCap := q.PageSize
	if q.SortMode == domain.SortRelevance && !q.Filters.PromotedOnly {
		promotedCap = int(math.Floor(float64(q.PageSize) * s.cfg.MaxPromotedFraction))
	}

	page := make([]domain.RankedResult, 0, q.PageSize)
	next := cursor{SortMode: q.SortMode, Organic: cur.Organic, Promoted: cur.Promoted}
	pi, oi, promotedTaken := 0, 0, 0

	for len(page) < q.PageSize && (pi < len(promoted) || oi < len(organic)) {
		takePromoted := false
		switch {
		case oi >= len(organic):
			// Organic exhausted: the cap no longer defers anything, excess
			// promoted items fill the remainder.
			takePromoted = true
		case pi >= len(promoted):
			takePromoted = false
		case less(promoted[pi], organic[oi]):
			takePromoted = promotedTaken < promotedCap
		}

		if takePromoted {
			page = append(page, promoted[pi])
			next.Promoted = keyFor(promoted[pi])
			pi++
			promotedTaken++
		} else {
			page = append(page, organic[oi])
			next.Organic = keyFor(organic[oi])
			oi++
		}
	}

	if pi >= len(promoted) && oi >= len(organic) {
		return page, ""
	}

	token, err := encodeCursor(next)
	if err != nil {
		// json.Marshal of a plain struct cannot fail; treat as end of
		// results rather than surfacing a broken token.
		s.logger.Error("failed to encode cursor", slog.Any("error", err))
		return page, ""
	}
	return page, token
}

// skipTo drops everything at or before the cursor key in the stream's
// ordering. Items inserted before the key since the last page are skipped,
// items removed are simply absent; either way no duplicate is re-served.
func skipTo(stream []domain.RankedResult, key *streamKey, less ranking.LessFunc) []domain.RankedResult {
	if key == nil {
		return stream
	}
	bound := key.boundary()
	i := 0
	for i < len(stream) && !less(bound, stream[i]) {
		i++
	}
	return stream[i:]
}
