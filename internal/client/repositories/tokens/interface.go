// Package tokens implements the TokenStore: durable storage for the single
// token pair of the current session.
//
// All implementations share the same contract. Save replaces the pair
// atomically, Load returns nil when no complete pair is stored, and Clear is
// idempotent. Every failure wraps client.ErrPersistence.
package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

type Repository interface {
	Save(ctx context.Context, pair models.TokenPair) error
	Load(ctx context.Context) (*models.TokenPair, error)
	Clear(ctx context.Context) error
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", client.ErrPersistence, op, err)
}
