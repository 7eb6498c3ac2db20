package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gopkg.in/yaml.v3"

	"github.com/ishuide/Car-price-prediction/pkg/loader"
)

// Options controls a training run.
type Options struct {
	TestRatio float64
	Seed      int64
	TopN      int
}

// DefaultOptions is the 80/20 split with seed 42 and the top 10 coefficients.
func DefaultOptions() Options {
	return Options{TestRatio: loader.DefaultTestRatio, Seed: loader.DefaultSeed, TopN: 10}
}

// Train extracts the schema from df, splits it, fits on the training part
// and scores on the holdout.
func Train(df dataframe.DataFrame, opts Options) (*Fitted, Metrics, error) {
	rows, targets, err := Extract(df)
	if err != nil {
		return nil, Metrics{}, err
	}
	if len(rows) < 2 {
		return nil, Metrics{}, fmt.Errorf("train: need at least 2 rows, have %d", len(rows))
	}
	trainIdx, testIdx := loader.TrainTestSplit(len(rows), opts.TestRatio, opts.Seed)

	f, err := Fit(loader.Take(rows, trainIdx), loader.Take(targets, trainIdx))
	if err != nil {
		return nil, Metrics{}, err
	}
	m, err := Evaluate(f, loader.Take(rows, testIdx), loader.Take(targets, testIdx))
	if err != nil {
		return nil, Metrics{}, err
	}
	m.TrainCount = len(trainIdx)
	return f, m, nil
}

// TableReader is the part of the store a training run needs.
type TableReader interface {
	ReadAll(ctx context.Context) (dataframe.DataFrame, error)
}

// Trainer runs read, fit, evaluate and save as one unit. Nothing is written
// unless every step succeeds.
type Trainer struct {
	Store        TableReader
	ArtifactPath string
	ReportPath   string // optional
	Options      Options
	Logger       *slog.Logger
}

func (t *Trainer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// Run executes one training run.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	log := t.logger()
	start := time.Now()

	df, err := t.Store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read training table: %w", err)
	}
	log.Info("training started", "rows", df.Nrow(), "test_ratio", t.Options.TestRatio, "seed", t.Options.Seed)

	f, m, err := Train(df, t.Options)
	if err != nil {
		return nil, err
	}
	if m.UnseenLabels > 0 {
		log.Warn("unseen categories in holdout", "column", ColFuelType, "rows", m.UnseenLabels)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Save(f, t.ArtifactPath); err != nil {
		return nil, err
	}

	r := NewReport(f, m, t.ArtifactPath, t.Options.TopN)
	if t.ReportPath != "" {
		if err := r.WriteYAML(t.ReportPath); err != nil {
			return nil, err
		}
	}
	log.Info("training finished",
		"run_id", r.RunID,
		"train", m.TrainCount,
		"test", m.TestCount,
		"mae", r.MAE,
		"rmse", r.RMSE,
		"r2", r.R2,
		"artifact", t.ArtifactPath,
		"took", time.Since(start))
	return r, nil
}

// Report summarizes a training run with display rounding applied.
type Report struct {
	RunID           string        `yaml:"run_id"`
	TrainedAt       time.Time     `yaml:"trained_at"`
	TrainCount      int           `yaml:"train_count"`
	TestCount       int           `yaml:"test_count"`
	MAE             float64       `yaml:"mae"`
	RMSE            float64       `yaml:"rmse"`
	R2              float64       `yaml:"r2"`
	Intercept       float64       `yaml:"intercept"`
	ArtifactPath    string        `yaml:"artifact_path"`
	TopCoefficients []Coefficient `yaml:"top_coefficients"`
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// NewReport builds the report of a fitted pipeline and its holdout metrics.
func NewReport(f *Fitted, m Metrics, artifactPath string, topN int) *Report {
	top := f.TopCoefficients(topN)
	for i := range top {
		top[i].Weight = round(top[i].Weight, 2)
	}
	return &Report{
		RunID:           f.RunID(),
		TrainedAt:       f.TrainedAt(),
		TrainCount:      m.TrainCount,
		TestCount:       m.TestCount,
		MAE:             round(m.MAE, 2),
		RMSE:            round(m.RMSE, 2),
		R2:              round(m.R2, 3),
		Intercept:       round(f.Intercept(), 2),
		ArtifactPath:    artifactPath,
		TopCoefficients: top,
	}
}

// WriteYAML writes the report to path, creating parent directories.
func (r *Report) WriteYAML(path string) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
