package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artiqmind/Lookali/internal/domain"
	"github.com/artiqmind/Lookali/internal/geo"
	"github.com/artiqmind/Lookali/internal/store"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

func newService() (*Service, *store.ListingStore, *geo.Index) {
	st := store.New()
	idx := geo.New(geo.DefaultCellSizeDeg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, idx, logger), st, idx
}

func validListing(id string) domain.Listing {
	return domain.Listing{
		ID:           id,
		SellerID:     "seller-1",
		Name:         "Bicicleta Aro 29",
		Category:     "esportes",
		Price:        89900,
		Location:     domain.Point{Lat: -23.5505, Lon: -46.6333},
		Availability: domain.AvailabilityAvailable,
		Rating:       4.2,
		ReviewCount:  8,
	}
}

func TestUpsert_WritesBothStructures(t *testing.T) {
	svc, st, idx := newService()

	_, err := svc.Upsert(context.Background(), validListing("lst-1"))
	require.NoError(t, err)

	_, err = st.Get("lst-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestUpsert_GeneratesSlugAndTimestamps(t *testing.T) {
	svc, _, _ := newService()

	got, err := svc.Upsert(context.Background(), validListing("lst-1"))
	require.NoError(t, err)

	assert.Equal(t, "bicicleta-aro-29", got.Slug)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestUpsert_PreservesExplicitSlugAndCreatedAt(t *testing.T) {
	svc, _, _ := newService()

	l := validListing("lst-1")
	l.Slug = "custom-slug"
	l.CreatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.Upsert(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", got.Slug)
	assert.Equal(t, l.CreatedAt, got.CreatedAt)
}

func TestUpsert_Validation(t *testing.T) {
	svc, _, _ := newService()

	original := int64(100)
	tests := []struct {
		name   string
		mutate func(*domain.Listing)
	}{
		{"missing id", func(l *domain.Listing) { l.ID = "" }},
		{"missing seller", func(l *domain.Listing) { l.SellerID = "" }},
		{"missing name", func(l *domain.Listing) { l.Name = "" }},
		{"negative price", func(l *domain.Listing) { l.Price = -1 }},
		{"bad coordinates", func(l *domain.Listing) { l.Location.Lat = 120 }},
		{"unknown availability", func(l *domain.Listing) { l.Availability = "sold_out" }},
		{"rating above 5", func(l *domain.Listing) { l.Rating = 5.5 }},
		{"negative review count", func(l *domain.Listing) { l.ReviewCount = -1 }},
		{"original price below price", func(l *domain.Listing) { l.OriginalPrice = &original }},
		{"unknown delivery option", func(l *domain.Listing) {
			l.DeliveryOptions = []domain.DeliveryOption{"drone"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validListing("lst-1")
			tt.mutate(&l)
			_, err := svc.Upsert(context.Background(), l)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestUpsert_ReplacesLocationInIndex(t *testing.T) {
	svc, _, idx := newService()

	l := validListing("lst-1")
	_, err := svc.Upsert(context.Background(), l)
	require.NoError(t, err)

	l.Location = domain.Point{Lat: -22.9068, Lon: -43.1729}
	_, err = svc.Upsert(context.Background(), l)
	require.NoError(t, err)

	matches, err := idx.WithinRadius(context.Background(), l.Location, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, idx.Len())
}

func TestDelete_RemovesBothStructures(t *testing.T) {
	svc, st, idx := newService()

	_, err := svc.Upsert(context.Background(), validListing("lst-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "lst-1"))

	_, err = st.Get("lst-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Zero(t, idx.Len())
}

func TestDelete_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newService()

	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDelete_CleansUpHalfPresentListing(t *testing.T) {
	svc, st, _ := newService()

	// Store-only record, as left by a past partial failure.
	require.NoError(t, st.Upsert(validListing("lst-1")))

	require.NoError(t, svc.Delete(context.Background(), "lst-1"))
	_, err := st.Get("lst-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGet(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Upsert(context.Background(), validListing("lst-1"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Equal(t, "lst-1", got.ID)

	_, err = svc.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.Get(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestBulkUpsert(t *testing.T) {
	svc, _, idx := newService()

	n, err := svc.BulkUpsert(context.Background(), []domain.Listing{
		validListing("lst-1"),
		validListing("lst-2"),
		validListing("lst-3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, idx.Len())
}

func TestBulkUpsert_RejectsWholeBatchOnBadRecord(t *testing.T) {
	svc, st, _ := newService()

	bad := validListing("lst-2")
	bad.Price = -1

	_, err := svc.BulkUpsert(context.Background(), []domain.Listing{
		validListing("lst-1"),
		bad,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Zero(t, st.Len())
}

func TestBulkUpsert_EmptyBatch(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.BulkUpsert(context.Background(), nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
