package tokens

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository lives as long as the process. Used by tests and by the
// "memory" token store setting.
type MemoryRepository struct {
	mu   sync.Mutex
	pair *models.TokenPair
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, pair models.TokenPair) error {
	if !pair.Complete() {
		return persistenceError("save tokens", errors.New("incomplete token pair"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pair = &pair
	return nil
}

func (r *MemoryRepository) Load(context.Context) (*models.TokenPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pair == nil {
		return nil, nil
	}
	p := *r.pair
	return &p, nil
}

func (r *MemoryRepository) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pair = nil
	return nil
}
