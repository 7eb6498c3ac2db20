package pipeline

import (
	"fmt"

	"github.com/ishuide/Car-price-prediction/pkg/dataprep"
	"github.com/ishuide/Car-price-prediction/pkg/stats"
)

// UnseenCategoryWarning is reported when a categorical value was not part of
// the fit-time vocabulary. The value is encoded as all zeros; it is never an error.
type UnseenCategoryWarning struct {
	Column string
	Label  string
}

func (w UnseenCategoryWarning) String() string {
	if w.Label == "" {
		return fmt.Sprintf("%s is missing, encoded as unknown", w.Column)
	}
	return fmt.Sprintf("%s %q was not seen during training, encoded as unknown", w.Column, w.Label)
}

// ColumnTransformer one-hot encodes the categorical feature and standardizes
// the numeric ones. The output layout is [one-hot..., scaled numeric...].
type ColumnTransformer struct {
	encoder *dataprep.OneHotEncoder
	scaler  *stats.StandardScaler
}

func newColumnTransformer() *ColumnTransformer {
	return &ColumnTransformer{
		encoder: dataprep.NewOneHotEncoder(ColFuelType),
		scaler:  stats.NewStandardScaler(),
	}
}

// Fit learns the vocabulary and the scaling statistics from rows.
func (ct *ColumnTransformer) Fit(rows []FeatureRow) error {
	labels := make([]string, len(rows))
	numeric := make([][]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.FuelType
		numeric[i] = r.Numeric()
	}
	if err := ct.encoder.Fit(labels); err != nil {
		return fmt.Errorf("fit %s encoder: %w", ColFuelType, err)
	}
	if err := ct.scaler.Fit(numeric); err != nil {
		return fmt.Errorf("fit numeric scaler: %w", err)
	}
	return nil
}

// TransformRow encodes one row with the frozen vocabulary and statistics.
// The warning is non-nil when the fuel type is unseen or missing.
func (ct *ColumnTransformer) TransformRow(r FeatureRow) ([]float64, *UnseenCategoryWarning) {
	oh, known := ct.encoder.Encode(r.FuelType)
	out := append(oh, ct.scaler.TransformRow(r.Numeric())...)
	if !known {
		return out, &UnseenCategoryWarning{Column: ColFuelType, Label: r.FuelType}
	}
	return out, nil
}

// Transform encodes every row and returns the warnings raised on the way.
func (ct *ColumnTransformer) Transform(rows []FeatureRow) ([][]float64, []UnseenCategoryWarning) {
	X := make([][]float64, len(rows))
	var warnings []UnseenCategoryWarning
	for i, r := range rows {
		x, w := ct.TransformRow(r)
		X[i] = x
		if w != nil {
			warnings = append(warnings, *w)
		}
	}
	return X, warnings
}

// FeatureNames returns the output column names in layout order.
func (ct *ColumnTransformer) FeatureNames() []string {
	return append(ct.encoder.FeatureNames(), NumericFeatures...)
}
