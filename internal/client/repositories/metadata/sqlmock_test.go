package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDriver = errors.New("disk I/O error")

func newMockRepo(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestSQLiteRepository_DriverErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()

	t.Run("get many", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT key, value FROM metadata WHERE key IN").WithArgs("a", "b").WillReturnError(errDriver)

		_, err := repo.GetMany(ctx, "a", "b")
		require.ErrorIs(t, err, errDriver)
		assert.Contains(t, err.Error(), "get metadata")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("INSERT INTO metadata").WithArgs("k", []byte("v")).WillReturnError(errDriver)

		err := repo.Set(ctx, "k", []byte("v"))
		require.ErrorIs(t, err, errDriver)
		assert.Contains(t, err.Error(), "set metadata[k]")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM metadata WHERE key IN").WithArgs("a", "b").WillReturnError(errDriver)

		err := repo.Delete(ctx, "a", "b")
		require.ErrorIs(t, err, errDriver)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clear all", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM metadata").WillReturnError(errDriver)

		err := repo.Delete(ctx)
		require.ErrorIs(t, err, errDriver)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLiteRepository_GetMany_RowError(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("a", []byte("1")).
		AddRow("b", []byte("2")).
		RowError(1, errDriver)
	mock.ExpectQuery("SELECT key, value FROM metadata WHERE key IN").WithArgs("a", "b").WillReturnRows(rows)

	_, err := repo.GetMany(context.Background(), "a", "b")
	require.ErrorIs(t, err, errDriver)
	assert.Contains(t, err.Error(), "iterate metadata rows")
	require.NoError(t, mock.ExpectationsWereMet())
}
