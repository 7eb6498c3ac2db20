package data

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedCars(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df, err := FromRecords([][]string{
		{"price", "mfg_year", "km", "fuel_type"},
		{"13500", "2002", "46986", "Diesel"},
		{"13750", "2002", "72937", "Diesel"},
		{"9950", "1999", "110404", "Petrol"},
		{"18600", "2004", "20019", "petrol"},
		{"7500", "1998", "180638", "CNG"},
	})
	require.NoError(t, err)
	return df
}

func TestHead(t *testing.T) {
	df := storedCars(t)
	assert.Equal(t, 2, Head(df, 2).Nrow())
	assert.Equal(t, 5, Head(df, 10).Nrow())
	assert.Equal(t, 0, Head(df, 0).Nrow())
}

func TestMatchFold(t *testing.T) {
	df := storedCars(t)
	for _, q := range []string{"petrol", "PETROL", "  Petrol "} {
		out, err := MatchFold(df, "fuel_type", q)
		require.NoError(t, err)
		assert.Equal(t, []string{"9950", "18600"}, out.Col("price").Records(), q)
	}

	out, err := MatchFold(df, "fuel_type", "Hydrogen")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Nrow())

	_, err = MatchFold(df, "fuel", "Petrol")
	assert.Error(t, err)
}

func TestBetween(t *testing.T) {
	df := storedCars(t)

	out, err := Between(df, "mfg_year", 2000, 2002)
	require.NoError(t, err)
	assert.Equal(t, []string{"13500", "13750"}, out.Col("price").Records())

	out, err = Between(df, "km", 0, 50000)
	require.NoError(t, err)
	assert.Equal(t, []string{"46986", "20019"}, out.Col("km").Records())

	_, err = Between(df, "km", 10, 1)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	numeric, categorical, err := Summary(storedCars(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"column", "price", "mfg_year", "km"}, numeric.Names())
	assert.Equal(t, "mean", numeric.Col("column").Records()[0])
	assert.InDelta(t, 12660.0, numeric.Col("price").Float()[0], 1e-9)

	require.Equal(t, 1, categorical.Nrow())
	row := categorical.Records()[1]
	// column, count, unique, top, freq
	assert.Equal(t, []string{"fuel_type", "5", "4", "Diesel", "2"}, row)
}

func TestSummaryEmpty(t *testing.T) {
	_, _, err := Summary(Head(storedCars(t), 0))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestDistinct(t *testing.T) {
	vals, err := Distinct(storedCars(t), "fuel_type")
	require.NoError(t, err)
	assert.Equal(t, []string{"CNG", "Diesel", "Petrol", "petrol"}, vals)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "47493", FormatFloat(47493))
	assert.Equal(t, "1.50", FormatFloat(1.5))
	assert.Equal(t, "-3.14", FormatFloat(-3.14159))
}
