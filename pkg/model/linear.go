package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// rcond is the relative singular value cutoff used to decide the rank of
// the centered design matrix.
const rcond = 1e-10

// LinearRegression is ordinary least squares with an intercept.
//
// Columns and target are centered before solving, the same way scikit-learn
// does it, and the centered system is solved through an SVD. The SVD gives the
// minimum-norm solution, so a full set of one-hot columns (which is collinear
// with the intercept) is fine.
type LinearRegression struct {
	W []float64 // weights
	B float64   // intercept
}

func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves for W and B. X must be rectangular with len(X) == len(y).
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("linear: no training rows")
	}
	if len(y) != n {
		return fmt.Errorf("linear: %d rows but %d targets", n, len(y))
	}
	p := len(X[0])

	xMean := make([]float64, p)
	for _, row := range X {
		if len(row) != p {
			return errors.New("linear: ragged feature matrix")
		}
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	m.W = make([]float64, p)
	m.B = yMean
	if p == 0 {
		return nil
	}

	a := mat.NewDense(n, p, nil)
	b := mat.NewDense(n, 1, nil)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		b.Set(i, 0, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return errors.New("linear: SVD factorization failed")
	}
	rank := svd.Rank(rcond)
	if rank > 0 {
		w := mat.NewDense(p, 1, nil)
		svd.SolveTo(w, b, rank)
		for j := 0; j < p; j++ {
			m.W[j] = w.At(j, 0)
		}
	}

	for j, w := range m.W {
		m.B -= w * xMean[j]
	}
	return nil
}

// PredictRow returns the estimate for one feature vector.
func (m *LinearRegression) PredictRow(x []float64) float64 {
	sum := m.B
	for j, v := range x {
		sum += m.W[j] * v
	}
	return sum
}

// Predict returns predictions for rows in X (rows of features).
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		pred[i] = m.PredictRow(row)
	}
	return pred
}

// Bias returns the fitted intercept.
func (m *LinearRegression) Bias() float64 {
	return m.B
}
