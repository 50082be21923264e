package geo

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

const (
	// DefaultCellSizeDeg is the default grid cell size in degrees
	// (~5.5 km of latitude). A fixed degree-based cell size is adequate for
	// a single metro-area deployment; multi-region deployments should tune
	// it per region.
	DefaultCellSizeDeg = 0.05

	// distanceEpsilonKm absorbs floating-point error at the radius boundary
	// (1 meter).
	distanceEpsilonKm = 0.001

	// kmPerDegreeLat is the approximate north-south extent of one degree of
	// latitude, used only for bounding-box cell enumeration; membership is
	// always decided by exact haversine distance.
	kmPerDegreeLat = 111.32

	// cancelCheckInterval is how many candidates are examined between
	// context cancellation checks during enumeration.
	cancelCheckInterval = 256

	shardCount = 32
)

// Match is a single radius-query hit: a listing id and its exact
// great-circle distance from the query center.
type Match struct {
	ID         string
	DistanceKm float64
}

type cellKey struct {
	latIdx int
	lonIdx int
}

// shard holds a partition of the index. Listings are assigned to shards by
// id hash, so writes to different listings serialize independently while a
// radius query only takes read locks.
type shard struct {
	mu    sync.RWMutex
	cells map[cellKey]map[string]domain.Point
	byID  map[string]cellKey
}

// Index is a uniform-grid spatial index over listing locations. It stores
// only id and location; listing attributes live in the ListingStore.
type Index struct {
	cellSizeDeg float64
	shards      [shardCount]*shard
}

// New creates a spatial index with the given cell size in degrees.
// Non-positive values fall back to DefaultCellSizeDeg.
func New(cellSizeDeg float64) *Index {
	if cellSizeDeg <= 0 {
		cellSizeDeg = DefaultCellSizeDeg
	}
	idx := &Index{cellSizeDeg: cellSizeDeg}
	for i := range idx.shards {
		idx.shards[i] = &shard{
			cells: make(map[cellKey]map[string]domain.Point),
			byID:  make(map[string]cellKey),
		}
	}
	return idx
}

func (idx *Index) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return idx.shards[h.Sum32()%shardCount]
}

// normalizeLon maps a longitude in degrees into [-180, 180), so +180 and
// -180 land in the same cell.
func normalizeLon(deg float64) float64 {
	for deg < -180 {
		deg += 360
	}
	for deg >= 180 {
		deg -= 360
	}
	return deg
}

func (idx *Index) cellFor(p domain.Point) cellKey {
	return cellKey{
		latIdx: int(math.Floor(p.Lat / idx.cellSizeDeg)),
		lonIdx: int(math.Floor(normalizeLon(p.Lon) / idx.cellSizeDeg)),
	}
}

// lonCellRange enumerates the longitude cell indices covering [minDeg,
// maxDeg], wrapping across the antimeridian so a query straddling ±180°
// reaches cells on both sides. At most one full circle of cells is returned.
func (idx *Index) lonCellRange(minDeg, maxDeg float64) []int {
	c := idx.cellSizeDeg
	minIdx := int(math.Floor(minDeg / c))
	maxIdx := int(math.Floor(maxDeg / c))
	if circle := int(math.Ceil(360 / c)); maxIdx-minIdx+1 > circle {
		maxIdx = minIdx + circle - 1
	}

	idxs := make([]int, 0, maxIdx-minIdx+1)
	seen := make(map[int]struct{}, maxIdx-minIdx+1)
	for i := minIdx; i <= maxIdx; i++ {
		// Wrap through the cell center so boundary cells resolve to exactly
		// one canonical index.
		wrapped := int(math.Floor(normalizeLon((float64(i)+0.5)*c) / c))
		if _, ok := seen[wrapped]; ok {
			continue
		}
		seen[wrapped] = struct{}{}
		idxs = append(idxs, wrapped)
	}
	return idxs
}

// Insert adds a listing location to the index. Inserting an id that is
// already present replaces its location.
func (idx *Index) Insert(id string, p domain.Point) error {
	if id == "" {
		return apperrors.InvalidArgument("listing id is required")
	}
	if !p.Valid() {
		return apperrors.InvalidArgumentf("invalid coordinates: lat=%g lon=%g", p.Lat, p.Lon)
	}

	s := idx.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(id, p, idx.cellFor(p))
	return nil
}

// Update replaces the location of an existing listing. Unknown ids fail
// with NotFound.
func (idx *Index) Update(id string, p domain.Point) error {
	if !p.Valid() {
		return apperrors.InvalidArgumentf("invalid coordinates: lat=%g lon=%g", p.Lat, p.Lon)
	}

	s := idx.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return apperrors.NotFound("listing", id)
	}
	s.put(id, p, idx.cellFor(p))
	return nil
}

// Remove deletes a listing from the index. Unknown ids fail with NotFound.
func (idx *Index) Remove(id string) error {
	s := idx.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[id]
	if !ok {
		return apperrors.NotFound("listing", id)
	}
	s.evict(id, key)
	return nil
}

// put stores the id in its cell, evicting any previous cell assignment.
// Callers must hold the shard write lock.
func (s *shard) put(id string, p domain.Point, key cellKey) {
	if prev, ok := s.byID[id]; ok && prev != key {
		s.evict(id, prev)
	}
	cell, ok := s.cells[key]
	if !ok {
		cell = make(map[string]domain.Point)
		s.cells[key] = cell
	}
	cell[id] = p
	s.byID[id] = key
}

// evict removes the id from the given cell, deleting the cell when empty.
// Callers must hold the shard write lock.
func (s *shard) evict(id string, key cellKey) {
	if cell, ok := s.cells[key]; ok {
		delete(cell, id)
		if len(cell) == 0 {
			delete(s.cells, key)
		}
	}
	delete(s.byID, id)
}

// WithinRadius returns all listings whose exact great-circle distance from
// center is at most radiusKm (plus a 1 m epsilon). Candidate cells come from
// the bounding box of the query circle; the square-vs-circle mismatch is
// eliminated by the exact distance check. Results are unordered.
//
// The context is checked periodically so oversized scans can be canceled
// without corrupting shared state.
func (idx *Index) WithinRadius(ctx context.Context, center domain.Point, radiusKm float64) ([]Match, error) {
	if radiusKm <= 0 {
		return nil, apperrors.InvalidArgument("radius must be positive")
	}
	if !center.Valid() {
		return nil, apperrors.InvalidArgumentf("invalid center: lat=%g lon=%g", center.Lat, center.Lon)
	}

	latSpanDeg := radiusKm / kmPerDegreeLat

	// Longitude degrees shrink with latitude. Near the poles the bounding
	// box degenerates to the full longitude range.
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	var lonSpanDeg float64
	if cosLat < 1e-6 {
		lonSpanDeg = 180
	} else {
		lonSpanDeg = radiusKm / (kmPerDegreeLat * cosLat)
	}

	minLat := int(math.Floor((center.Lat - latSpanDeg) / idx.cellSizeDeg))
	maxLat := int(math.Floor((center.Lat + latSpanDeg) / idx.cellSizeDeg))
	lonIdxs := idx.lonCellRange(center.Lon-lonSpanDeg, center.Lon+lonSpanDeg)

	var matches []Match
	examined := 0

	for latIdx := minLat; latIdx <= maxLat; latIdx++ {
		for _, lonIdx := range lonIdxs {
			key := cellKey{latIdx: latIdx, lonIdx: lonIdx}
			for _, s := range idx.shards {
				s.mu.RLock()
				cell := s.cells[key]
				for id, p := range cell {
					examined++
					if examined%cancelCheckInterval == 0 {
						if err := ctx.Err(); err != nil {
							s.mu.RUnlock()
							return nil, err
						}
					}
					if d := DistanceKm(center, p); d <= radiusKm+distanceEpsilonKm {
						matches = append(matches, Match{ID: id, DistanceKm: d})
					}
				}
				s.mu.RUnlock()
			}
		}
	}

	return matches, nil
}

// Len returns the number of indexed listings.
func (idx *Index) Len() int {
	n := 0
	for _, s := range idx.shards {
		s.mu.RLock()
		n += len(s.byID)
		s.mu.RUnlock()
	}
	return n
}
