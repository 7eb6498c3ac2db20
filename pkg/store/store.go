package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	_ "modernc.org/sqlite"

	"github.com/ishuide/Car-price-prediction/pkg/data"
)

// ErrTableNotFound is returned by ReadAll before the first WriteAll.
var ErrTableNotFound = errors.New("table not found")

// Store keeps the cleaned dataset as a single table. Every WriteAll replaces
// the table contents as a whole.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore wraps an open database.
func NewStore(db *sql.DB, table string) *Store {
	return &Store{db: db, table: table}
}

// Open opens (or creates) the SQLite file at path.
func Open(ctx context.Context, path, table string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	return NewStore(db, table), nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Table is the name of the managed table.
func (s *Store) Table() string { return s.table }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(t series.Type) string {
	switch t {
	case series.Int, series.Bool:
		return "INTEGER"
	case series.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func seriesType(decl string) (series.Type, bool) {
	switch strings.ToUpper(decl) {
	case "INTEGER", "INT", "BIGINT":
		return series.Int, true
	case "REAL", "FLOAT", "DOUBLE":
		return series.Float, true
	case "TEXT", "VARCHAR":
		return series.String, true
	}
	return "", false
}

func cellValue(e series.Element, t series.Type) (any, error) {
	if e.IsNA() {
		return nil, nil
	}
	switch t {
	case series.Int:
		return e.Int()
	case series.Float:
		return e.Float(), nil
	case series.Bool:
		b, err := e.Bool()
		if err != nil {
			return nil, err
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return e.String(), nil
	}
}

// WriteAll replaces the table with df in one transaction: the old table is
// dropped, recreated from df's column types and filled row by row. A failure
// leaves the previous contents untouched.
func (s *Store) WriteAll(ctx context.Context, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("write %s: %w", s.table, df.Err)
	}
	names := df.Names()
	types := df.Types()
	if len(names) == 0 {
		return fmt.Errorf("write %s: table has no columns", s.table)
	}

	cols := make([]string, len(names))
	quoted := make([]string, len(names))
	marks := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
		cols[i] = quoted[i] + " " + sqlType(types[i])
		marks[i] = "?"
	}
	table := quoteIdent(s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for r := 0; r < df.Nrow(); r++ {
		for c := range names {
			v, err := cellValue(df.Elem(r, c), types[c])
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", r, names[c], err)
			}
			args[c] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exists reports whether the table has been written.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", s.table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", s.table, err)
	}
	return true, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []byte:
		return string(x)
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

// ReadAll returns the whole table in insertion order. Column types come from
// the table declaration, NULL cells come back as missing.
func (s *Store) ReadAll(ctx context.Context) (dataframe.DataFrame, error) {
	ok, err := s.Exists(ctx)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrTableNotFound, s.table)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table)+" ORDER BY rowid")
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read columns: %w", err)
	}
	types := make(map[string]series.Type, len(names))
	if cts, err := rows.ColumnTypes(); err == nil {
		for i, ct := range cts {
			if t, ok := seriesType(ct.DatabaseTypeName()); ok {
				types[names[i]] = t
			}
		}
	}

	records := [][]string{names}
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make([]string, len(names))
		for i, v := range vals {
			rec[i] = formatCell(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to iterate %s: %w", s.table, err)
	}
	return data.FromTypedRecords(records, types)
}
