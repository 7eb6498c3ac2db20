package dataprep

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gota/gota/series"

	"github.com/ishuide/Car-price-prediction/pkg/stats"
)

// ErrImputation matches every *ImputationError.
var ErrImputation = errors.New("imputation failed")

// ImputationError reports a column with no observed values, so neither a
// median nor a mode exists to fill it with. A column whose every cell is
// missing carries no type information when it is loaded, so it is detected
// as text and reported with Strategy "median or mode".
type ImputationError struct {
	Column   string
	Strategy string
}

func (e *ImputationError) Error() string {
	return fmt.Sprintf("column %q has no non-missing values to compute a %s from", e.Column, e.Strategy)
}

func (e *ImputationError) Is(target error) bool { return target == ErrImputation }

// Fill records what an imputation pass did to one column.
type Fill struct {
	Column   string
	Strategy string
	Value    string
	Count    int
}

func countNaN(s series.Series) int {
	n := 0
	for _, na := range s.IsNaN() {
		if na {
			n++
		}
	}
	return n
}

// ImputeIndicator fills missing cells with 0 and casts the column to Int.
// Non-missing cells must be numeric (or bool) and are truncated to integers.
func ImputeIndicator(s series.Series) (series.Series, Fill, error) {
	fill := Fill{Column: s.Name, Strategy: "constant", Value: "0"}
	out := make([]int, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			fill.Count++
			continue
		}
		v := el.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s, fill, fmt.Errorf("column %q: cannot cast %q to an integer indicator", s.Name, el.String())
		}
		out[i] = int(v)
	}
	return series.New(out, series.Int, s.Name), fill, nil
}

// ImputeMedian fills missing cells of a numeric column with the median of the
// observed cells. The median is taken over the whole column once. An Int
// column stays Int when the median is integral and becomes Float otherwise.
func ImputeMedian(s series.Series) (series.Series, Fill, error) {
	fill := Fill{Column: s.Name, Strategy: "median"}
	fill.Count = countNaN(s)
	if fill.Count == 0 {
		return s, fill, nil
	}
	vals := s.Float()
	observed := stats.DropNaN(vals)
	if len(observed) == 0 {
		return s, fill, &ImputationError{Column: s.Name, Strategy: "median"}
	}
	median := stats.Median(observed)
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = median
		}
	}

	if s.Type() == series.Int && median == math.Trunc(median) {
		ints := make([]int, len(vals))
		for i, v := range vals {
			ints[i] = int(v)
		}
		fill.Value = fmt.Sprintf("%d", int(median))
		return series.New(ints, series.Int, s.Name), fill, nil
	}
	fill.Value = fmt.Sprintf("%g", median)
	return series.New(vals, series.Float, s.Name), fill, nil
}

// ImputeMode fills missing cells of a categorical column with its most
// frequent observed value, ties going to the lexicographically first value.
func ImputeMode(s series.Series) (series.Series, Fill, error) {
	fill := Fill{Column: s.Name, Strategy: "mode"}
	fill.Count = countNaN(s)
	if fill.Count == 0 {
		return s, fill, nil
	}
	recs := s.Records()
	nan := s.IsNaN()
	observed := make([]string, 0, len(recs))
	for i, v := range recs {
		if !nan[i] {
			observed = append(observed, v)
		}
	}
	mode, ok := stats.ModeString(observed)
	if !ok {
		return s, fill, &ImputationError{Column: s.Name, Strategy: "median or mode"}
	}
	for i := range recs {
		if nan[i] {
			recs[i] = mode
		}
	}
	fill.Value = mode
	return series.New(recs, s.Type(), s.Name), fill, nil
}
