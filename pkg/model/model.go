package model

// Model is a generic supervised learning interface.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

var _ Model = (*LinearRegression)(nil)
