package stats

import (
	"errors"
	"math"
)

// StandardScaler standardizes columns to zero mean and unit variance using
// statistics captured once by Fit. Transform never refits.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit computes per-column mean and population std. NaN cells are ignored,
// a constant column gets std 1 so it scales to 0 instead of dividing by zero.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("scaler: no rows to fit")
	}
	c := len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, 0, len(X))
	for j := 0; j < c; j++ {
		col = col[:0]
		for i := range X {
			col = append(col, X[i][j])
		}
		vals := DropNaN(col)
		if len(vals) == 0 {
			return errors.New("scaler: column has no observed values")
		}
		s.Mean[j] = Mean(vals)
		s.Std[j] = Std(vals)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

// Fitted reports whether Fit has completed.
func (s *StandardScaler) Fitted() bool { return s.fit || len(s.Mean) > 0 }

// TransformRow scales a single row with the frozen statistics.
// A NaN cell is imputed with the fit-time mean, i.e. it scales to 0.
func (s *StandardScaler) TransformRow(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if math.IsNaN(v) {
			v = s.Mean[j]
		}
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if !s.Fitted() {
		return X
	}
	Y := make([][]float64, len(X))
	for i, row := range X {
		Y[i] = s.TransformRow(row)
	}
	return Y
}
