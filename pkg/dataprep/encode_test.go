package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneHotEncoder(t *testing.T) {
	enc := NewOneHotEncoder("fuel_type")
	require.NoError(t, enc.Fit([]string{"Petrol", "Diesel", "Petrol", "CNG", ""}))

	assert.Equal(t, []string{"CNG", "Diesel", "Petrol"}, enc.Categories)
	assert.Equal(t, []string{"fuel_type_CNG", "fuel_type_Diesel", "fuel_type_Petrol"}, enc.FeatureNames())

	vec, ok := enc.Encode("Diesel")
	assert.True(t, ok)
	assert.Equal(t, []float64{0, 1, 0}, vec)

	vec, ok = enc.Encode("Hydrogen")
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, vec)

	vec, ok = enc.Encode("")
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, vec)
}

func TestOneHotEncoderNeedsLabels(t *testing.T) {
	assert.Error(t, NewOneHotEncoder("fuel_type").Fit([]string{"", ""}))
}
