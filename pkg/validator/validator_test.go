package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upsertRequest struct {
	ID       string  `validate:"required"`
	Name     string  `validate:"required,min=2"`
	Price    int64   `validate:"gte=0"`
	Lat      float64 `validate:"latitude"`
	Lon      float64 `validate:"longitude"`
	SortMode string  `validate:"omitempty,oneof=relevance distance price_low price_high newest rating"`
}

func TestValidate_Valid(t *testing.T) {
	req := upsertRequest{ID: "lst-1", Name: "Bike", Price: 15000, Lat: -23.56, Lon: -46.64}
	assert.NoError(t, Validate(req))
}

func TestValidate_MissingRequired(t *testing.T) {
	req := upsertRequest{Name: "Bike", Price: 100}
	err := Validate(req)

	require.Error(t, err)
	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "is required", valErr.Fields()["ID"])
}

func TestValidate_OutOfRangeCoordinates(t *testing.T) {
	req := upsertRequest{ID: "lst-1", Name: "Bike", Lat: 123.0, Lon: 200.0}
	err := Validate(req)

	require.Error(t, err)
	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "must be a valid latitude", valErr.Fields()["Lat"])
	assert.Equal(t, "must be a valid longitude", valErr.Fields()["Lon"])
}

func TestValidate_OneOf(t *testing.T) {
	req := upsertRequest{ID: "lst-1", Name: "Bike", SortMode: "cheapest"}
	err := Validate(req)

	require.Error(t, err)
	valErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, valErr.Fields()["SortMode"], "must be one of")
}

func TestValidationError_ErrorJoinsMessages(t *testing.T) {
	err := Validate(upsertRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'ID' is required")
	assert.Contains(t, err.Error(), "field 'Name' is required")
}
