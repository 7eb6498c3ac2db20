package cli

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"

	"github.com/ishuide/Car-price-prediction/pkg/charts"
	"github.com/ishuide/Car-price-prediction/pkg/config"
	"github.com/ishuide/Car-price-prediction/pkg/data"
	"github.com/ishuide/Car-price-prediction/pkg/dataprep"
	"github.com/ishuide/Car-price-prediction/pkg/pipeline"
	"github.com/ishuide/Car-price-prediction/pkg/store"
)

// App ties configuration, the store and the pipeline together for the
// commands and the menu.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	store *store.Store
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{Config: cfg, Logger: logger}
}

// Store opens the configured database on first use.
func (a *App) Store(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(ctx, a.Config.Data.DBPath, a.Config.Data.Table)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// Close releases the database if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// Ingest loads the raw dataset, cleans it and replaces the stored table.
func (a *App) Ingest(ctx context.Context) (dataprep.Summary, error) {
	raw, err := data.Load(a.Config.Data.RawPath, a.Config.Data.RawSheet)
	if err != nil {
		return dataprep.Summary{}, err
	}
	cleaned, sum, err := dataprep.NewCleaner(a.Logger).Clean(raw)
	if err != nil {
		return sum, fmt.Errorf("clean %s: %w", a.Config.Data.RawPath, err)
	}
	s, err := a.Store(ctx)
	if err != nil {
		return sum, err
	}
	if err := s.WriteAll(ctx, cleaned); err != nil {
		return sum, err
	}
	a.Logger.Info("dataset stored", "rows", cleaned.Nrow(), "db", a.Config.Data.DBPath, "table", a.Config.Data.Table)
	return sum, nil
}

// Trainer builds a training run over the stored table.
func (a *App) Trainer(ctx context.Context) (*pipeline.Trainer, error) {
	s, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	m := a.Config.Model
	return &pipeline.Trainer{
		Store:        s,
		ArtifactPath: m.ArtifactPath,
		ReportPath:   m.ReportPath,
		Options:      pipeline.Options{TestRatio: m.TestRatio, Seed: m.Seed, TopN: m.TopN},
		Logger:       a.Logger,
	}, nil
}

// Train fits, evaluates and saves a new model.
func (a *App) Train(ctx context.Context) (*pipeline.Report, error) {
	tr, err := a.Trainer(ctx)
	if err != nil {
		return nil, err
	}
	return tr.Run(ctx)
}

// Predict loads the saved model and prices one request. A fuel type that
// matches a known category up to case is replaced by that category.
func (a *App) Predict(req pipeline.Request) (pipeline.Prediction, error) {
	f, err := pipeline.Load(a.Config.Model.ArtifactPath)
	if err != nil {
		return pipeline.Prediction{}, err
	}
	if req.FuelType != nil {
		fold := cases.Fold()
		want := fold.String(*req.FuelType)
		for _, c := range f.Categories() {
			if fold.String(c) == want {
				req.FuelType = &c
				break
			}
		}
	}
	p, err := f.PredictRequest(req)
	for _, w := range p.Warnings {
		a.Logger.Warn("unseen category at predict time", "column", w.Column, "label", w.Label, "run_id", f.RunID())
	}
	return p, err
}

// Charts renders every chart from the stored table.
func (a *App) Charts(ctx context.Context) ([]string, error) {
	s, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	df, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return charts.RenderAll(df, a.Config.Data.ChartDir)
}
