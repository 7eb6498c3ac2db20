package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Feature schema of the price model.
const (
	ColFuelType  = "fuel_type"
	ColMfgYear   = "mfg_year"
	ColKM        = "km"
	ColHP        = "hp"
	ColDoors     = "doors"
	ColAutomatic = "automatic"
	ColPrice     = "price"
)

var (
	CategoricalFeatures = []string{ColFuelType}
	NumericFeatures     = []string{ColMfgYear, ColKM, ColHP, ColDoors, ColAutomatic}
	Target              = ColPrice
)

// ErrSchema matches every *SchemaError.
var ErrSchema = errors.New("schema mismatch")

// SchemaError lists the feature or target columns a training table lacks.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// FeatureRow is one record projected onto the feature schema.
// A missing numeric field is NaN, a missing fuel type is "".
type FeatureRow struct {
	FuelType  string
	MfgYear   float64
	KM        float64
	HP        float64
	Doors     float64
	Automatic float64
}

// Numeric returns the numeric fields in NumericFeatures order.
func (r FeatureRow) Numeric() []float64 {
	return []float64{r.MfgYear, r.KM, r.HP, r.Doors, r.Automatic}
}

// MissingRow has every field missing.
func MissingRow() FeatureRow {
	nan := math.NaN()
	return FeatureRow{MfgYear: nan, KM: nan, HP: nan, Doors: nan, Automatic: nan}
}

// Request is the shape accepted for a single prediction. Nil fields are
// treated as missing rather than rejected.
type Request struct {
	FuelType  *string `json:"fuel_type,omitempty" yaml:"fuel_type,omitempty"`
	MfgYear   *int    `json:"mfg_year,omitempty" yaml:"mfg_year,omitempty"`
	KM        *int    `json:"km,omitempty" yaml:"km,omitempty"`
	HP        *int    `json:"hp,omitempty" yaml:"hp,omitempty"`
	Doors     *int    `json:"doors,omitempty" yaml:"doors,omitempty"`
	Automatic *int    `json:"automatic,omitempty" yaml:"automatic,omitempty"`
}

// Row converts the request into a FeatureRow.
func (r Request) Row() FeatureRow {
	row := MissingRow()
	if r.FuelType != nil {
		row.FuelType = *r.FuelType
	}
	setInt := func(dst *float64, v *int) {
		if v != nil {
			*dst = float64(*v)
		}
	}
	setInt(&row.MfgYear, r.MfgYear)
	setInt(&row.KM, r.KM)
	setInt(&row.HP, r.HP)
	setInt(&row.Doors, r.Doors)
	setInt(&row.Automatic, r.Automatic)
	return row
}

// MissingFields names the schema fields the request leaves out.
func (r Request) MissingFields() []string {
	var out []string
	if r.FuelType == nil {
		out = append(out, ColFuelType)
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{ColMfgYear, r.MfgYear},
		{ColKM, r.KM},
		{ColHP, r.HP},
		{ColDoors, r.Doors},
		{ColAutomatic, r.Automatic},
	} {
		if f.v == nil {
			out = append(out, f.name)
		}
	}
	return out
}

// ExampleRequest is a ready-made payload for demos.
func ExampleRequest() Request {
	fuel := "Petrol"
	year, km, hp, doors, auto := 2002, 65000, 90, 4, 0
	return Request{
		FuelType:  &fuel,
		MfgYear:   &year,
		KM:        &km,
		HP:        &hp,
		Doors:     &doors,
		Automatic: &auto,
	}
}

// Extract projects a cleaned table onto the feature schema and returns the
// rows with their targets. Every required column must be present.
func Extract(df dataframe.DataFrame) ([]FeatureRow, []float64, error) {
	if df.Err != nil {
		return nil, nil, fmt.Errorf("extract: %w", df.Err)
	}
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	var missing []string
	for _, n := range append(append(append([]string{}, CategoricalFeatures...), NumericFeatures...), Target) {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, &SchemaError{Missing: missing}
	}

	n := df.Nrow()
	fuel := df.Col(ColFuelType).Records()
	fuelNaN := df.Col(ColFuelType).IsNaN()
	nums := make([][]float64, len(NumericFeatures))
	for j, name := range NumericFeatures {
		nums[j] = df.Col(name).Float()
	}
	targets := df.Col(Target).Float()

	rows := make([]FeatureRow, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(targets[i]) {
			return nil, nil, fmt.Errorf("extract: row %d has no %s", i, Target)
		}
		row := FeatureRow{
			MfgYear:   nums[0][i],
			KM:        nums[1][i],
			HP:        nums[2][i],
			Doors:     nums[3][i],
			Automatic: nums[4][i],
		}
		if !fuelNaN[i] {
			row.FuelType = fuel[i]
		}
		rows[i] = row
	}
	return rows, targets, nil
}
