package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artiqmind/Lookali/internal/domain"
	apperrors "github.com/artiqmind/Lookali/pkg/errors"
)

func strPtr(s string) *string                           { return &s }
func int64Ptr(v int64) *int64                           { return &v }
func availPtr(a domain.Availability) *domain.Availability { return &a }

var catalog = []domain.Listing{
	{
		ID:              "a",
		Category:        "esportes",
		Price:           10000,
		Availability:    domain.AvailabilityAvailable,
		DeliveryOptions: []domain.DeliveryOption{domain.DeliveryPickup, domain.DeliveryDelivery},
		IsPromoted:      true,
	},
	{
		ID:              "b",
		Category:        "esportes",
		Price:           5000,
		Availability:    domain.AvailabilityLimited,
		DeliveryOptions: []domain.DeliveryOption{domain.DeliveryPickup},
	},
	{
		ID:           "c",
		Category:     "moveis",
		Price:        25000,
		Availability: domain.AvailabilityOutOfStock,
	},
}

func ids(listings []domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestApply_NoFiltersPassesEverything(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestApply_Category(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{Category: strPtr("esportes")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestApply_PriceRange(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{PriceMin: int64Ptr(6000), PriceMax: int64Ptr(30000)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestApply_PriceBoundsAreInclusive(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{PriceMin: int64Ptr(5000), PriceMax: int64Ptr(10000)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestApply_Availability(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{Availability: availPtr(domain.AvailabilityAvailable)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestApply_OutOfStockNotExcludedByDefault(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{})
	require.NoError(t, err)
	assert.Contains(t, ids(got), "c")
}

func TestApply_DeliveryOptionsRequireAll(t *testing.T) {
	// Both options requested: only the listing supporting both passes.
	got, err := Apply(catalog, domain.Filters{
		DeliveryOptions: []domain.DeliveryOption{domain.DeliveryPickup, domain.DeliveryDelivery},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))

	got, err = Apply(catalog, domain.Filters{
		DeliveryOptions: []domain.DeliveryOption{domain.DeliveryPickup},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestApply_PromotedOnly(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{PromotedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestApply_Conjunction(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{
		Category: strPtr("esportes"),
		PriceMax: int64Ptr(6000),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))
}

// Sequential application of two filter sets equals applying their
// conjunction, regardless of order.
func TestApply_ConjunctionIsOrderIndependent(t *testing.T) {
	f1 := domain.Filters{Category: strPtr("esportes")}
	f2 := domain.Filters{PriceMin: int64Ptr(6000)}
	combined := domain.Filters{Category: strPtr("esportes"), PriceMin: int64Ptr(6000)}

	step1, err := Apply(catalog, f1)
	require.NoError(t, err)
	seq12, err := Apply(step1, f2)
	require.NoError(t, err)

	step2, err := Apply(catalog, f2)
	require.NoError(t, err)
	seq21, err := Apply(step2, f1)
	require.NoError(t, err)

	all, err := Apply(catalog, combined)
	require.NoError(t, err)

	assert.Equal(t, ids(all), ids(seq12))
	assert.Equal(t, ids(all), ids(seq21))
}

func TestValidate_InvertedPriceRange(t *testing.T) {
	err := Validate(domain.Filters{PriceMin: int64Ptr(1000), PriceMax: int64Ptr(10)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestValidate_NegativePrices(t *testing.T) {
	err := Validate(domain.Filters{PriceMin: int64Ptr(-1)})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = Validate(domain.Filters{PriceMax: int64Ptr(-1)})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestValidate_UnknownAvailability(t *testing.T) {
	bad := domain.Availability("sold_out")
	err := Validate(domain.Filters{Availability: &bad})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestValidate_UnknownDeliveryOption(t *testing.T) {
	err := Validate(domain.Filters{DeliveryOptions: []domain.DeliveryOption{"drone"}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestApply_InvalidFiltersScanNothing(t *testing.T) {
	got, err := Apply(catalog, domain.Filters{PriceMin: int64Ptr(1000), PriceMax: int64Ptr(10)})
	require.Error(t, err)
	assert.Nil(t, got)
}
