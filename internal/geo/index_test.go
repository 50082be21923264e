package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

// São Paulo city center, the reference deployment region.
var center = domain.Point{Lat: -23.5505, Lon: -46.6333}

// pointAtKm returns a point approximately km kilometers north of p.
func pointAtKm(p domain.Point, km float64) domain.Point {
	return domain.Point{Lat: p.Lat + km/kmPerDegreeLat, Lon: p.Lon}
}

func matchIDs(matches []Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// São Paulo to Rio de Janeiro is roughly 360 km.
	rio := domain.Point{Lat: -22.9068, Lon: -43.1729}
	d := DistanceKm(center, rio)
	assert.InDelta(t, 360, d, 10)
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	assert.Zero(t, DistanceKm(center, center))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	p := pointAtKm(center, 7)
	assert.InDelta(t, DistanceKm(center, p), DistanceKm(p, center), 1e-12)
}

func TestWithinRadius_IncludesOnlyListingsInRadius(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	require.NoError(t, idx.Insert("near", pointAtKm(center, 1)))
	require.NoError(t, idx.Insert("edge", pointAtKm(center, 4.9)))
	require.NoError(t, idx.Insert("far", pointAtKm(center, 10)))

	matches, err := idx.WithinRadius(context.Background(), center, 5)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"near", "edge"}, matchIDs(matches))
}

func TestWithinRadius_WrapsAcrossAntimeridian(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	// Points on both sides of the 180th meridian, near Fiji's latitude.
	require.NoError(t, idx.Insert("west-of-line", domain.Point{Lat: -17.7, Lon: 179.95}))
	require.NoError(t, idx.Insert("east-of-line", domain.Point{Lat: -17.7, Lon: -179.95}))
	require.NoError(t, idx.Insert("on-line", domain.Point{Lat: -17.7, Lon: 180}))
	require.NoError(t, idx.Insert("beyond", domain.Point{Lat: -17.7, Lon: -179.2}))

	matches, err := idx.WithinRadius(context.Background(), domain.Point{Lat: -17.7, Lon: 179.98}, 15)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"west-of-line", "east-of-line", "on-line"}, matchIDs(matches))
}

func TestWithinRadius_ReportsExactDistance(t *testing.T) {
	idx := New(DefaultCellSizeDeg)
	p := pointAtKm(center, 2)
	require.NoError(t, idx.Insert("a", p))

	matches, err := idx.WithinRadius(context.Background(), center, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, DistanceKm(center, p), matches[0].DistanceKm, 1e-12)
}

func TestWithinRadius_CrossesCellBoundaries(t *testing.T) {
	// Cell size ~1.1 km of latitude so a 5 km radius spans several cells.
	idx := New(0.01)

	for i := 1; i <= 8; i++ {
		id := fmt.Sprintf("lst-%d", i)
		require.NoError(t, idx.Insert(id, pointAtKm(center, float64(i)*0.6)))
	}

	matches, err := idx.WithinRadius(context.Background(), center, 3)
	require.NoError(t, err)

	// Listings at 0.6 .. 3.0 km qualify; 3.6 km and beyond do not.
	assert.ElementsMatch(t, []string{"lst-1", "lst-2", "lst-3", "lst-4", "lst-5"}, matchIDs(matches))
}

func TestWithinRadius_DiagonalCornerExcluded(t *testing.T) {
	// A point in a corner cell of the bounding box that is outside the
	// circle must be rejected by the exact distance check.
	idx := New(0.05)
	diag := domain.Point{
		Lat: center.Lat + 4.5/kmPerDegreeLat,
		Lon: center.Lon + 4.9/(kmPerDegreeLat*0.9169), // cos(-23.55°) ≈ 0.9169
	}
	require.NoError(t, idx.Insert("corner", diag))
	require.Greater(t, DistanceKm(center, diag), 5.0)

	matches, err := idx.WithinRadius(context.Background(), center, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWithinRadius_InvalidRadius(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	for _, radius := range []float64{0, -1} {
		_, err := idx.WithinRadius(context.Background(), center, radius)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	}
}

func TestWithinRadius_InvalidCenter(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	_, err := idx.WithinRadius(context.Background(), domain.Point{Lat: 91, Lon: 0}, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestWithinRadius_CanceledContext(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	// Enough candidates in one cell to hit the cancellation check.
	for i := 0; i < 600; i++ {
		require.NoError(t, idx.Insert(fmt.Sprintf("lst-%d", i), pointAtKm(center, 0.1)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.WithinRadius(ctx, center, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInsert_Validation(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	err := idx.Insert("", center)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = idx.Insert("lst-1", domain.Point{Lat: 120, Lon: 0})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestInsert_ReplacesExistingLocation(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	require.NoError(t, idx.Insert("lst-1", pointAtKm(center, 1)))
	require.NoError(t, idx.Insert("lst-1", pointAtKm(center, 40)))

	matches, err := idx.WithinRadius(context.Background(), center, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 1, idx.Len())
}

func TestUpdate_MovesListingAcrossCells(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	require.NoError(t, idx.Insert("lst-1", pointAtKm(center, 1)))
	require.NoError(t, idx.Update("lst-1", pointAtKm(center, 20)))

	near, err := idx.WithinRadius(context.Background(), center, 5)
	require.NoError(t, err)
	assert.Empty(t, near)

	wide, err := idx.WithinRadius(context.Background(), center, 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"lst-1"}, matchIDs(wide))
}

func TestUpdate_UnknownIDIsNotFound(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	err := idx.Update("ghost", center)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRemove(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	require.NoError(t, idx.Insert("lst-1", pointAtKm(center, 1)))
	require.NoError(t, idx.Remove("lst-1"))
	assert.Zero(t, idx.Len())

	err := idx.Remove("lst-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestIndex_ConcurrentReadersAndWriters(t *testing.T) {
	idx := New(DefaultCellSizeDeg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("lst-%d-%d", n, j)
				_ = idx.Insert(id, pointAtKm(center, float64(j%10)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = idx.WithinRadius(context.Background(), center, 15)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, idx.Len())
}
