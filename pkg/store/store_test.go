package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishuide/Car-price-prediction/pkg/data"
)

func cars(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df := dataframe.New(
		series.New([]int{13500, 13750, 9950}, series.Int, "price"),
		series.New([]string{"Diesel", "Diesel", "Petrol"}, series.String, "fuel_type"),
		series.New([]float64{46986, 72937.5, 41711}, series.Float, "km"),
	)
	require.NoError(t, df.Err)
	return df
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "database", "car_data.db"), "used_cars")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_WriteAllSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db, "used_cars")

	t.Run("replaces the table in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "used_cars"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "used_cars" ("price" INTEGER, "fuel_type" TEXT, "km" REAL)`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "used_cars" ("price", "fuel_type", "km") VALUES (?, ?, ?)`))
		prep.ExpectExec().WithArgs(int64(13500), "Diesel", 46986.0).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(int64(13750), "Diesel", 72937.5).WillReturnResult(sqlmock.NewResult(2, 1))
		prep.ExpectExec().WithArgs(int64(9950), "Petrol", 41711.0).WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectCommit()

		require.NoError(t, s.WriteAll(context.Background(), cars(t)))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when an insert fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DROP TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(`INSERT INTO`)
		prep.ExpectExec().WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := s.WriteAll(context.Background(), cars(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("writes missing cells as NULL", func(t *testing.T) {
		df, err := data.FromRecords([][]string{{"km"}, {""}})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`DROP TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(`INSERT INTO`)
		prep.ExpectExec().WithArgs(nil).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, s.WriteAll(context.Background(), df))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_ReadAllMissingTableSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT name FROM sqlite_master`).
		WithArgs("used_cars").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err = NewStore(db, "used_cars").ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	in := cars(t)

	require.NoError(t, s.WriteAll(ctx, in))
	out, err := s.ReadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, in.Names(), out.Names())
	assert.Equal(t, in.Types(), out.Types())
	assert.Equal(t, in.Records(), out.Records())
}

func TestStore_WriteAllReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, cars(t)))
	require.NoError(t, s.WriteAll(ctx, cars(t)))
	out, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Nrow())

	smaller := cars(t).Subset([]int{0})
	require.NoError(t, s.WriteAll(ctx, smaller))
	out, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller.Records(), out.Records())
}

func TestStore_ReadAllBeforeWrite(t *testing.T) {
	s := openTemp(t)
	ok, err := s.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestStore_NullsAndEmptyTable(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	df, err := data.FromRecords([][]string{
		{"price", "fuel_type"},
		{"100", ""},
		{"", "Petrol"},
	})
	require.NoError(t, err)
	require.NoError(t, s.WriteAll(ctx, df))
	out, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, out.Col("price").IsNaN())
	assert.Equal(t, []bool{true, false}, out.Col("fuel_type").IsNaN())

	require.NoError(t, s.WriteAll(ctx, df.Subset([]int{})))
	out, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Nrow())
	assert.Equal(t, []string{"price", "fuel_type"}, out.Names())
	assert.Equal(t, series.Int, out.Col("price").Type())
}
