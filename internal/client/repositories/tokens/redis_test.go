package tokens

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisRepository needs a server; set REDIS_ADDR to run it.
func TestRedisRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	contract(t, func(t *testing.T) Repository {
		key := "gophsession:test:" + uuid.NewString()
		t.Cleanup(func() { _ = rdb.Del(context.Background(), key).Err() })
		return NewRedisRepository(rdb, key)
	})
}

func TestRedisRepository_DefaultKey(t *testing.T) {
	r := NewRedisRepository(nil, "")
	assert.Equal(t, DefaultRedisKey, r.key)
}

func TestRedisRepository_UnreachableIsPersistenceError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	r := NewRedisRepository(rdb, "")
	ctx := context.Background()

	require.ErrorIs(t, r.Save(ctx, pair1), client.ErrPersistence)
	require.ErrorIs(t, r.Clear(ctx), client.ErrPersistence)
	_, err := r.Load(ctx)
	require.ErrorIs(t, err, client.ErrPersistence)
}
