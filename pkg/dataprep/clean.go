package dataprep

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DropColumns are removed from every cleaned table. Absent ones are ignored.
var DropColumns = []string{
	"mfg_month", "cylinders", "guarantee_period", "radio",
	"radio_cassette", "sport_model", "backseat_divider", "metallic_rim",
}

// IndicatorColumns hold 0/1 flags. Missing cells mean "not present" and are
// filled with 0 rather than a statistic.
var IndicatorColumns = []string{
	"met_color", "automatic", "mfr_guarantee", "bovag_guarantee",
	"abs", "airbag_1", "airbag_2", "airco", "automatic_airco",
	"boardcomputer", "cd_player", "central_lock", "powered_windows",
	"power_steering", "mistlamps", "parking_assistant", "tow_bar",
}

// Summary describes one cleaning pass.
type Summary struct {
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	ColumnsDropped    []string
	Fills             []Fill // only columns that had missing cells
}

// Cleaner turns a raw table into a deduplicated table with no missing cells.
// It keeps no state between calls.
type Cleaner struct {
	logger *slog.Logger
}

func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean applies, in order: column drop, duplicate removal, indicator fill,
// numeric median fill, categorical mode fill. Any error aborts the whole pass
// and no partially cleaned table is returned.
func (c *Cleaner) Clean(df dataframe.DataFrame) (dataframe.DataFrame, Summary, error) {
	var sum Summary
	if df.Err != nil {
		return dataframe.DataFrame{}, sum, fmt.Errorf("clean: input table: %w", df.Err)
	}
	sum.RowsIn = df.Nrow()
	c.logger.Info("cleaning dataset", "rows", df.Nrow(), "columns", df.Ncol())

	// ---- Drop denylisted columns ----
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range DropColumns {
		if present[name] {
			sum.ColumnsDropped = append(sum.ColumnsDropped, name)
		}
	}
	if len(sum.ColumnsDropped) > 0 {
		df = df.Drop(sum.ColumnsDropped)
		if df.Err != nil {
			return dataframe.DataFrame{}, sum, fmt.Errorf("clean: drop columns: %w", df.Err)
		}
	}

	// ---- Remove duplicates ----
	df, sum.DuplicatesRemoved = DropDuplicates(df)
	if df.Nrow() == 0 {
		sum.RowsOut = 0
		c.logger.Info("dataset is empty after deduplication", "columns", df.Ncol())
		return df, sum, nil
	}

	// ---- Indicator columns: missing -> 0, cast to int ----
	for _, name := range IndicatorColumns {
		if !present[name] {
			continue
		}
		s, fill, err := ImputeIndicator(df.Col(name))
		if err != nil {
			return dataframe.DataFrame{}, sum, fmt.Errorf("clean: %w", err)
		}
		df = df.Mutate(s)
		if fill.Count > 0 {
			sum.Fills = append(sum.Fills, fill)
		}
	}

	// ---- Numeric -> median, everything else -> mode ----
	for _, name := range df.Names() {
		col := df.Col(name)
		impute := ImputeMode
		if col.Type() == series.Int || col.Type() == series.Float {
			impute = ImputeMedian
		}
		s, fill, err := impute(col)
		if err != nil {
			return dataframe.DataFrame{}, sum, fmt.Errorf("clean: %w", err)
		}
		if fill.Count == 0 {
			continue
		}
		df = df.Mutate(s)
		sum.Fills = append(sum.Fills, fill)
		c.logger.Debug("imputed column", "column", fill.Column, "strategy", fill.Strategy, "value", fill.Value, "cells", fill.Count)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, sum, fmt.Errorf("clean: %w", df.Err)
	}

	sum.RowsOut = df.Nrow()
	c.logger.Info("dataset cleaned",
		"rows", df.Nrow(),
		"columns", df.Ncol(),
		"duplicates_removed", sum.DuplicatesRemoved,
		"columns_dropped", len(sum.ColumnsDropped),
		"columns_imputed", len(sum.Fills),
	)
	return df, sum, nil
}

// DropDuplicates removes exact duplicate rows, keeping the first occurrence.
// Missing cells compare equal to each other.
func DropDuplicates(df dataframe.DataFrame) (dataframe.DataFrame, int) {
	if df.Nrow() == 0 {
		return df, 0
	}
	recs := df.Records()[1:] // skip header
	seen := make(map[string]struct{}, len(recs))
	keep := make([]int, 0, len(recs))
	for i, row := range recs {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	removed := len(recs) - len(keep)
	if removed == 0 {
		return df, 0
	}
	return df.Subset(keep), removed
}
