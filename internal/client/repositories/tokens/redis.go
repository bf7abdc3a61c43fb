package tokens

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding the pair.
const DefaultRedisKey = "gophsession:tokens"

var _ Repository = (*RedisRepository)(nil)

// RedisRepository keeps the pair in one hash. Save replaces the whole hash in
// a MULTI/EXEC block so readers never see a mix of two pairs.
type RedisRepository struct {
	rdb *redis.Client
	key string
}

// NewRedisRepository uses DefaultRedisKey when key is empty.
func NewRedisRepository(rdb *redis.Client, key string) *RedisRepository {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepository{rdb: rdb, key: key}
}

func (r *RedisRepository) Save(ctx context.Context, pair models.TokenPair) error {
	if !pair.Complete() {
		return persistenceError("save tokens", errors.New("incomplete token pair"))
	}
	fields := make(map[string]any, len(keys))
	for k, v := range encode(pair) {
		fields[k] = v
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key, fields)
		return nil
	})
	if err != nil {
		return persistenceError("save tokens", err)
	}
	return nil
}

func (r *RedisRepository) Load(ctx context.Context) (*models.TokenPair, error) {
	m, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, persistenceError("load tokens", err)
	}
	return decode(m), nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return persistenceError("clear tokens", err)
	}
	return nil
}
