package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ishuide/Car-price-prediction/pkg/data"
	"github.com/ishuide/Car-price-prediction/pkg/loader"
)

var fuels = []string{"Petrol", "Diesel", "CNG"}

// syntheticRecords returns a header and n rows where
// price = 1000*(year-2000) - 0.05*km exactly.
func syntheticRecords(n int) [][]string {
	records := [][]string{{"price", "mfg_year", "km", "fuel_type", "hp", "doors", "automatic", "model"}}
	for i := 0; i < n; i++ {
		year := 2000 + i%15
		km := 10000 + i*1000
		price := 1000*(year-2000) - km/20
		records = append(records, []string{
			strconv.Itoa(price),
			strconv.Itoa(year),
			strconv.Itoa(km),
			fuels[i%len(fuels)],
			strconv.Itoa(70 + (i%4)*10),
			strconv.Itoa(3 + i%3),
			strconv.Itoa(i % 2),
			"Corolla",
		})
	}
	return records
}

func syntheticCars(t *testing.T, n int) dataframe.DataFrame {
	t.Helper()
	df, err := data.FromRecords(syntheticRecords(n))
	require.NoError(t, err)
	return df
}

func coefficient(t *testing.T, f *Fitted, name string) float64 {
	t.Helper()
	for _, c := range f.Coefficients() {
		if c.Name == name {
			return c.Weight
		}
	}
	t.Fatalf("no coefficient named %s", name)
	return 0
}

func TestTrainRecoversLinearPrice(t *testing.T) {
	f, m, err := Train(syntheticCars(t, 100), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 80, m.TrainCount)
	assert.Equal(t, 20, m.TestCount)
	assert.Less(t, m.RMSE, 1e-6)
	assert.Less(t, m.MAE, 1e-6)
	assert.InDelta(t, 1.0, m.R2, 1e-9)

	assert.Greater(t, coefficient(t, f, ColMfgYear), 0.0)
	assert.Less(t, coefficient(t, f, ColKM), 0.0)
	assert.Equal(t, []string{"CNG", "Diesel", "Petrol"}, f.Categories())
	assert.NotEmpty(t, f.RunID())
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	df := syntheticCars(t, 60)
	opts := Options{TestRatio: 0.25, Seed: 7}

	_, first, err := Train(df, opts)
	require.NoError(t, err)
	_, second, err := Train(df, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictUnseenFuelType(t *testing.T) {
	f, _, err := Train(syntheticCars(t, 50), DefaultOptions())
	require.NoError(t, err)

	row := FeatureRow{FuelType: "Hydrogen", MfgYear: 2005, KM: 40000, HP: 90, Doors: 4, Automatic: 0}
	p, err := f.Predict(row)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p.Price) || math.IsInf(p.Price, 0))
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, UnseenCategoryWarning{Column: ColFuelType, Label: "Hydrogen"}, p.Warnings[0])
}

func TestPredictRequestWithMissingFields(t *testing.T) {
	f, _, err := Train(syntheticCars(t, 50), DefaultOptions())
	require.NoError(t, err)

	year := 2004
	req := Request{MfgYear: &year}
	assert.Equal(t, []string{ColFuelType, ColKM, ColHP, ColDoors, ColAutomatic}, req.MissingFields())

	p, err := f.PredictRequest(req)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p.Price))
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, "", p.Warnings[0].Label)
}

func TestPredictExampleRequest(t *testing.T) {
	f, _, err := Train(syntheticCars(t, 100), DefaultOptions())
	require.NoError(t, err)

	p, err := f.PredictRequest(ExampleRequest())
	require.NoError(t, err)
	assert.Empty(t, p.Warnings)
	assert.Empty(t, ExampleRequest().MissingFields())
	// 1000*2 - 65000/20
	assert.InDelta(t, -1250.0, p.Price, 1e-6)
	assert.Equal(t, -1250.0, p.Rounded())
}

func TestEvaluateCountsUnseenLabels(t *testing.T) {
	f, m, err := Train(syntheticCars(t, 60), DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, m.UnseenLabels)

	year, km := 2005, 40000
	rows := []FeatureRow{
		{FuelType: "Hydrogen", MfgYear: 2005, KM: 40000, HP: 80, Doors: 4, Automatic: 0},
		{FuelType: "Diesel", MfgYear: 2005, KM: 40000, HP: 80, Doors: 4, Automatic: 0},
		Request{MfgYear: &year, KM: &km}.Row(),
	}
	targets := []float64{3000, 3000, 3000}
	m, err = Evaluate(f, rows, targets)
	require.NoError(t, err)
	assert.Equal(t, 3, m.TestCount)
	assert.Equal(t, 2, m.UnseenLabels, "unknown and missing fuel types")
}

func TestRounded(t *testing.T) {
	assert.Equal(t, 12345.68, Prediction{Price: 12345.6789}.Rounded())
	assert.Equal(t, 10.0, Prediction{Price: 9.999}.Rounded())
}

func TestTopCoefficients(t *testing.T) {
	f, _, err := Train(syntheticCars(t, 100), DefaultOptions())
	require.NoError(t, err)

	all := f.TopCoefficients(0)
	assert.Len(t, all, len(fuels)+len(NumericFeatures))
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, math.Abs(all[i-1].Weight), math.Abs(all[i].Weight))
	}

	top := f.TopCoefficients(2)
	require.Len(t, top, 2)
	assert.ElementsMatch(t, []string{ColMfgYear, ColKM}, []string{top[0].Name, top[1].Name})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f, _, err := Train(syntheticCars(t, 100), DefaultOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "price.gob")
	require.NoError(t, Save(f, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.RunID(), loaded.RunID())
	assert.True(t, f.TrainedAt().Equal(loaded.TrainedAt()))
	assert.Equal(t, f.Coefficients(), loaded.Coefficients())

	for _, row := range []FeatureRow{
		{FuelType: "Diesel", MfgYear: 2003, KM: 55000, HP: 110, Doors: 5, Automatic: 1},
		{FuelType: "Hydrogen", MfgYear: 2010, KM: 12000, HP: 80, Doors: 3, Automatic: 0},
		MissingRow(),
	} {
		want, err := f.Predict(row)
		require.NoError(t, err)
		got, err := loaded.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, want.Price, got.Price)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price.gob")
	first, _, err := Train(syntheticCars(t, 40), DefaultOptions())
	require.NoError(t, err)
	second, _, err := Train(syntheticCars(t, 90), DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, Save(first, path))
	require.NoError(t, Save(second, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second.RunID(), loaded.RunID())
}

func TestLoadMissingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "price.gob")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)

	var mnf *ModelNotFoundError
	require.ErrorAs(t, err, &mnf)
	assert.Equal(t, path, mnf.Path)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a model"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestExtractReportsEveryMissingColumn(t *testing.T) {
	df, err := data.FromRecords([][]string{
		{"price", "fuel_type", "km"},
		{"100", "Petrol", "1000"},
	})
	require.NoError(t, err)

	_, _, err = Extract(df)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{ColAutomatic, ColDoors, ColHP, ColMfgYear}, serr.Missing)
}

func TestTrainRejectsTinyTable(t *testing.T) {
	_, _, err := Train(syntheticCars(t, 1), DefaultOptions())
	assert.Error(t, err)
}

type stubReader struct {
	df  dataframe.DataFrame
	err error
}

func (s stubReader) ReadAll(context.Context) (dataframe.DataFrame, error) { return s.df, s.err }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestTrainerRun(t *testing.T) {
	dir := t.TempDir()
	tr := &Trainer{
		Store:        stubReader{df: syntheticCars(t, 100)},
		ArtifactPath: filepath.Join(dir, "models", "price.gob"),
		ReportPath:   filepath.Join(dir, "models", "report.yaml"),
		Options:      Options{TestRatio: 0.2, Seed: 42, TopN: 3},
		Logger:       quietLogger(),
	}
	r, err := tr.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, r.TrainCount)
	assert.Equal(t, 20, r.TestCount)
	assert.Equal(t, 0.0, r.RMSE)
	assert.Equal(t, 1.0, r.R2)
	assert.Len(t, r.TopCoefficients, 3)

	_, err = Load(tr.ArtifactPath)
	require.NoError(t, err)

	b, err := os.ReadFile(tr.ReportPath)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	assert.Equal(t, r.RunID, decoded.RunID)
	assert.Equal(t, r.TopCoefficients, decoded.TopCoefficients)
}

func TestTrainerLogsUnseenHoldoutLabels(t *testing.T) {
	opts := Options{TestRatio: 0.2, Seed: 42, TopN: 3}
	records := syntheticRecords(50)
	_, testIdx := loader.TrainTestSplit(50, opts.TestRatio, opts.Seed)
	records[testIdx[0]+1][3] = "LPG"
	df, err := data.FromRecords(records)
	require.NoError(t, err)

	var logs bytes.Buffer
	tr := &Trainer{
		Store:        stubReader{df: df},
		ArtifactPath: filepath.Join(t.TempDir(), "price.gob"),
		Options:      opts,
		Logger:       slog.New(slog.NewTextHandler(&logs, nil)),
	}
	_, err = tr.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "unseen categories in holdout")
	assert.Contains(t, logs.String(), "rows=1")
}

func TestTrainerSavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	bad, err := data.FromRecords([][]string{{"price", "km"}, {"1", "2"}, {"3", "4"}})
	require.NoError(t, err)

	for name, reader := range map[string]stubReader{
		"read error":   {err: errors.New("no such table")},
		"schema error": {df: bad},
	} {
		t.Run(name, func(t *testing.T) {
			tr := &Trainer{
				Store:        reader,
				ArtifactPath: filepath.Join(dir, name, "price.gob"),
				Options:      DefaultOptions(),
				Logger:       quietLogger(),
			}
			_, err := tr.Run(context.Background())
			require.Error(t, err)
			_, statErr := os.Stat(tr.ArtifactPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}
