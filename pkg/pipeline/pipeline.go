package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ishuide/Car-price-prediction/pkg/model"
)

// Fitted is the frozen result of one training run: preprocessing statistics
// plus model coefficients. It is never modified after Fit returns, so one
// value can serve any number of Predict calls.
type Fitted struct {
	pre       *ColumnTransformer
	reg       *model.LinearRegression
	runID     string
	trainedAt time.Time
}

// Coefficient is a named model weight.
type Coefficient struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Metrics are holdout scores of a fitted pipeline.
type Metrics struct {
	TrainCount int
	TestCount  int
	MAE        float64
	RMSE       float64
	R2         float64
	// UnseenLabels counts holdout rows whose fuel type is outside the
	// training vocabulary.
	UnseenLabels int
}

// Prediction is a single price estimate.
type Prediction struct {
	Price    float64
	Warnings []UnseenCategoryWarning
}

// Rounded is the price as shown to users, two decimals.
func (p Prediction) Rounded() float64 {
	return math.Round(p.Price*100) / 100
}

// Fit trains the preprocessor and the regression on rows and targets.
func Fit(rows []FeatureRow, targets []float64) (*Fitted, error) {
	if len(rows) == 0 {
		return nil, errors.New("fit: no training rows")
	}
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("fit: %d rows but %d targets", len(rows), len(targets))
	}
	pre := newColumnTransformer()
	if err := pre.Fit(rows); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	X, _ := pre.Transform(rows)
	reg := model.NewLinearRegression()
	if err := reg.Fit(X, targets); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	return &Fitted{
		pre:       pre,
		reg:       reg,
		runID:     uuid.NewString(),
		trainedAt: time.Now().UTC(),
	}, nil
}

// RunID identifies the training run that produced f.
func (f *Fitted) RunID() string { return f.runID }

// TrainedAt is when f was fitted.
func (f *Fitted) TrainedAt() time.Time { return f.trainedAt }

// Categories returns the fuel types known to the encoder.
func (f *Fitted) Categories() []string {
	return append([]string(nil), f.pre.encoder.Categories...)
}

// Predict estimates the price of one row. Unseen or missing fuel types and
// missing numeric fields degrade to "unknown" encodings instead of failing;
// the fuel type case comes back in Warnings for the caller to report.
func (f *Fitted) Predict(row FeatureRow) (Prediction, error) {
	x, w := f.pre.TransformRow(row)
	p := Prediction{Price: f.reg.PredictRow(x)}
	if w != nil {
		p.Warnings = append(p.Warnings, *w)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return p, errors.New("predict: estimate is not finite")
	}
	return p, nil
}

// PredictRequest is Predict for the request shape.
func (f *Fitted) PredictRequest(req Request) (Prediction, error) {
	return f.Predict(req.Row())
}

// Evaluate scores f on a holdout set. TrainCount is left for the caller.
func Evaluate(f *Fitted, rows []FeatureRow, targets []float64) (Metrics, error) {
	if len(rows) == 0 {
		return Metrics{}, errors.New("evaluate: empty holdout")
	}
	if len(rows) != len(targets) {
		return Metrics{}, fmt.Errorf("evaluate: %d rows but %d targets", len(rows), len(targets))
	}
	X, warnings := f.pre.Transform(rows)
	sc, err := model.Score(targets, f.reg.Predict(X))
	if err != nil {
		return Metrics{}, fmt.Errorf("evaluate: %w", err)
	}
	return Metrics{
		TestCount:    len(rows),
		MAE:          sc.MAE,
		RMSE:         sc.RMSE,
		R2:           sc.R2,
		UnseenLabels: len(warnings),
	}, nil
}

// Coefficients returns every model weight with its feature name, in layout order.
func (f *Fitted) Coefficients() []Coefficient {
	names := f.pre.FeatureNames()
	out := make([]Coefficient, len(names))
	for i, n := range names {
		out[i] = Coefficient{Name: n, Weight: f.reg.W[i]}
	}
	return out
}

// Intercept returns the model bias.
func (f *Fitted) Intercept() float64 { return f.reg.Bias() }

// TopCoefficients returns the n weights with the largest magnitude. Equal
// magnitudes keep feature layout order. n <= 0 returns all of them.
func (f *Fitted) TopCoefficients(n int) []Coefficient {
	coefs := f.Coefficients()
	sort.SliceStable(coefs, func(i, j int) bool {
		return math.Abs(coefs[i].Weight) > math.Abs(coefs[j].Weight)
	})
	if n > 0 && n < len(coefs) {
		coefs = coefs[:n]
	}
	return coefs
}
