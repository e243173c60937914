package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/go-shop-services/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each order as a JSON blob under order:{id}.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func orderKey(id string) string { return fmt.Sprintf(redisx.KeyOrder, id) }

// List returns every stored order in keyspace iteration order. Keys removed
// between SCAN and MGET are skipped, as are blobs that no longer decode.
func (s *RedisStore) List(ctx context.Context) ([]Order, error) {
	keys, err := redisx.ScanKeys(ctx, s.rdb, redisx.KeyOrderPattern)
	if err != nil {
		return nil, unavailable(err)
	}
	out := make([]Order, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var o Order
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			slog.WarnContext(ctx, "skip corrupt order record", "key", keys[i], "error", err)
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Order, error) {
	raw, err := s.rdb.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Order{}, unavailable(err)
	}
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return o, nil
}

func (s *RedisStore) Put(ctx context.Context, o Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	if err := s.rdb.Set(ctx, orderKey(o.ID), b, 0).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := redisx.Exists(ctx, s.rdb, orderKey(id))
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, orderKey(id)).Result()
	if err != nil {
		return unavailable(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
