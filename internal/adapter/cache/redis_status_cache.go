package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

// RedisStatusCache keeps the latest known order status (plus owner,
// for authorization) for cheap polling reads. Best effort only;
// MySQL stays authoritative.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (r *RedisStatusCache) SetStatus(ctx context.Context, orderID string, e usecase.StatusEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, "order:status:"+orderID, raw, r.ttl).Err()
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, orderID string) (usecase.StatusEntry, bool, error) {
	raw, err := r.rdb.Get(ctx, "order:status:"+orderID).Bytes()
	if err == redis.Nil {
		return usecase.StatusEntry{}, false, nil
	}
	if err != nil {
		return usecase.StatusEntry{}, false, err
	}

	var e usecase.StatusEntry
	// malformed or stale-format entries read as misses
	if err := json.Unmarshal(raw, &e); err != nil {
		return usecase.StatusEntry{}, false, nil
	}
	if _, ok := domain.ParseStatus(string(e.Status)); !ok || e.OwnerID == "" {
		return usecase.StatusEntry{}, false, nil
	}
	return e, true, nil
}

var _ usecase.StatusCache = (*RedisStatusCache)(nil)
