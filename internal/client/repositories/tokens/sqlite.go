package tokens

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsession/internal/dbx"
)

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository keeps the pair in the metadata table. Every write touches
// all keys in one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, pair models.TokenPair) error {
	if !pair.Complete() {
		return persistenceError("save tokens", errors.New("incomplete token pair"))
	}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range encode(pair) {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return persistenceError("save tokens", err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.TokenPair, error) {
	raw, err := metadata.NewSQLiteRepository(r.db).GetMany(ctx, keys...)
	if err != nil {
		return nil, persistenceError("load tokens", err)
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = string(v)
	}
	return decode(m), nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, keys...)
	})
	if err != nil {
		return persistenceError("clear tokens", err)
	}
	return nil
}
