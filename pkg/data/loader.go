package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// ErrRawNotFound is returned when the raw dataset file does not exist.
var ErrRawNotFound = errors.New("raw dataset not found")

// NaNTokens are the cell values treated as missing when a table is loaded.
var NaNTokens = []string{"", "NA", "NaN", "<nil>"}

// loadOptions keeps CSV, XLSX and store reads on the same type detection and
// missing-value rules.
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NaNTokens),
	}
}

// FromRecords builds a table from a header row followed by data rows.
// Column types are detected from the values (Int, Float, Bool, String).
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	return FromTypedRecords(records, nil)
}

// FromTypedRecords is FromRecords with the types of some columns fixed in
// advance. A header without data rows yields an empty table that keeps its
// columns; untyped columns are String then.
func FromTypedRecords(records [][]string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, errors.New("data: no header row")
	}
	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			t, ok := types[name]
			if !ok {
				t = series.String
			}
			cols[i] = series.New([]string{}, t, name)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return df, fmt.Errorf("data: empty table: %w", df.Err)
		}
		return df, nil
	}
	opts := loadOptions()
	if len(types) > 0 {
		opts = append(opts, dataframe.WithTypes(types))
	}
	df := dataframe.LoadRecords(records, opts...)
	if df.Err != nil {
		return df, fmt.Errorf("data: load records: %w", df.Err)
	}
	return df, nil
}

// ReadCSV parses a comma separated table with a header row. A file holding
// only the header gives an empty table with those columns.
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	records, err := csv.NewReader(bufio.NewReader(r)).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("data: read csv: %w", err)
	}
	df, err := FromRecords(records)
	if err != nil {
		return df, fmt.Errorf("data: read csv: %w", err)
	}
	return df, nil
}

// ReadXLSX loads a worksheet whose first row is the header. An empty sheet
// name selects the first sheet of the workbook.
func ReadXLSX(r io.Reader, sheet string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("data: open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, errors.New("data: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("data: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("data: sheet %q is empty", sheet)
	}

	// GetRows trims trailing empty cells, pad every row to the header width
	width := len(rows[0])
	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, width)
		copy(rec, row)
		records[i] = rec
	}
	return FromRecords(records)
}

// Load reads the raw dataset at path. The format follows the file extension:
// .xlsx is read as a workbook, anything else as CSV.
func Load(path, sheet string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrRawNotFound, path)
		}
		return dataframe.DataFrame{}, fmt.Errorf("data: open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(f, sheet)
	}
	return ReadCSV(f)
}
