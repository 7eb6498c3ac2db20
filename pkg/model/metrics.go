package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/ishuide/Car-price-prediction/pkg/stats"
)

// Scores holds the regression errors of one set of predictions.
type Scores struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
}

// Score compares predictions with the true targets. R2 is 0 when the
// targets are constant.
func Score(yTrue, yPred []float64) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, errors.New("score: no targets")
	}
	if len(yTrue) != len(yPred) {
		return Scores{}, fmt.Errorf("score: %d targets but %d predictions", len(yTrue), len(yPred))
	}
	mean := stats.Mean(yTrue)
	var absSum, ssRes, ssTot float64
	for i, y := range yTrue {
		r := y - yPred[i]
		absSum += math.Abs(r)
		ssRes += r * r
		ssTot += (y - mean) * (y - mean)
	}
	n := float64(len(yTrue))
	s := Scores{MAE: absSum / n, MSE: ssRes / n}
	s.RMSE = math.Sqrt(s.MSE)
	if ssTot > 0 {
		s.R2 = 1 - ssRes/ssTot
	}
	return s, nil
}
