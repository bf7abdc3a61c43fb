package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGetMany(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	m, err := r.GetMany(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"k1": {0x01, 0x02}}, m)
}

func TestGetMany_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	m, err := r.GetMany(context.Background(), "absent")
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestSet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	m, err := r.GetMany(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), m["k"])
}

func TestGetMany_ReturnsPresentSubset(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Set(ctx, "c", []byte("3")))

	m, err := r.GetMany(ctx, "a", "c", "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "c": []byte("3")}, m)

	m, err = r.GetMany(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDelete_KeysAndAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Set(ctx, "c", []byte{3}))

	require.NoError(t, r.Delete(ctx, "a", "missing"))
	m, err := r.GetMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": {2}, "c": {3}}, m)

	require.NoError(t, r.Delete(ctx))
	m, err = r.GetMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Set(ctx, "a", []byte("1")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	m, err := NewSQLiteRepository(db).GetMany(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, m, "rolled back write must not be visible")
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.GetMany(ctx, "k")
	require.ErrorContains(t, err, "get metadata")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "delete metadata")
}
