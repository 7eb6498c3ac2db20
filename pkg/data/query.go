package data

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/cases"

	"github.com/ishuide/Car-price-prediction/pkg/stats"
)

// ErrNoRows is returned by summaries of an empty table.
var ErrNoRows = errors.New("table has no rows")

func column(df dataframe.DataFrame, name string) (series.Series, error) {
	if df.Err != nil {
		return series.Series{}, df.Err
	}
	for _, n := range df.Names() {
		if n == name {
			return df.Col(name), nil
		}
	}
	return series.Series{}, fmt.Errorf("data: column %s not found", name)
}

func indexRange(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Head returns the first n rows of df.
func Head(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n < 0 || n >= df.Nrow() {
		return df
	}
	return df.Subset(indexRange(n))
}

// MatchFold keeps the rows whose value in col equals value under Unicode
// case folding. Missing cells never match.
func MatchFold(df dataframe.DataFrame, col, value string) (dataframe.DataFrame, error) {
	s, err := column(df, col)
	if err != nil {
		return df, err
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(value))
	na := s.IsNaN()
	var idx []int
	for i, v := range s.Records() {
		if !na[i] && fold.String(v) == want {
			idx = append(idx, i)
		}
	}
	return df.Subset(idx), nil
}

// Between keeps the rows whose numeric value in col lies in [lo, hi].
func Between(df dataframe.DataFrame, col string, lo, hi float64) (dataframe.DataFrame, error) {
	s, err := column(df, col)
	if err != nil {
		return df, err
	}
	if lo > hi {
		return df, fmt.Errorf("data: empty range [%g, %g]", lo, hi)
	}
	var idx []int
	for i, v := range s.Float() {
		if v >= lo && v <= hi {
			idx = append(idx, i)
		}
	}
	return df.Subset(idx), nil
}

// Summary describes numeric columns with gota's Describe and text columns
// with count, unique, top and freq.
func Summary(df dataframe.DataFrame) (numeric, categorical dataframe.DataFrame, err error) {
	if df.Err != nil {
		return numeric, categorical, df.Err
	}
	if df.Nrow() == 0 {
		return numeric, categorical, ErrNoRows
	}
	var numCols, textCols []string
	for i, t := range df.Types() {
		if t == series.String {
			textCols = append(textCols, df.Names()[i])
		} else {
			numCols = append(numCols, df.Names()[i])
		}
	}
	if len(numCols) > 0 {
		numeric = df.Select(numCols).Describe()
	}
	if len(textCols) > 0 {
		categorical = describeText(df, textCols)
	}
	return numeric, categorical, nil
}

func describeText(df dataframe.DataFrame, cols []string) dataframe.DataFrame {
	names := make([]string, len(cols))
	count := make([]int, len(cols))
	unique := make([]int, len(cols))
	top := make([]string, len(cols))
	freq := make([]int, len(cols))
	for j, c := range cols {
		s := df.Col(c)
		na := s.IsNaN()
		var vals []string
		seen := map[string]int{}
		for i, v := range s.Records() {
			if na[i] {
				continue
			}
			vals = append(vals, v)
			seen[v]++
		}
		names[j] = c
		count[j] = len(vals)
		unique[j] = len(seen)
		if m, ok := stats.ModeString(vals); ok {
			top[j] = m
			freq[j] = seen[m]
		}
	}
	return dataframe.New(
		series.New(names, series.String, "column"),
		series.New(count, series.Int, "count"),
		series.New(unique, series.Int, "unique"),
		series.New(top, series.String, "top"),
		series.New(freq, series.Int, "freq"),
	)
}

// Distinct returns the sorted distinct non-missing values of col.
func Distinct(df dataframe.DataFrame, col string) ([]string, error) {
	s, err := column(df, col)
	if err != nil {
		return nil, err
	}
	na := s.IsNaN()
	seen := map[string]bool{}
	var out []string
	for i, v := range s.Records() {
		if !na[i] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

// FormatFloat renders a float for tables: integral values without decimals,
// others with two.
func FormatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
