package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisRepository stores each cart as a JSON string. A positive ttl is refreshed on every save.
func NewRedisRepository(rdb redis.Cmdable, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (Cart, error) {
	key := sessionKey(sessionID)

	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		log.Error().Err(err).Str("key", key).Msg("failed to load cart from redis")
		return Cart{}, &PersistenceError{Op: "load", Session: sessionID, Err: err}
	}

	return Decode(data)
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := Encode(c)
	if err != nil {
		return &PersistenceError{Op: "save", Session: sessionID, Err: err}
	}

	key := sessionKey(sessionID)
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to save cart to redis")
		return &PersistenceError{Op: "save", Session: sessionID, Err: err}
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	key := sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete cart from redis")
		return &PersistenceError{Op: "delete", Session: sessionID, Err: err}
	}
	return nil
}

var _ Repository = (*RedisRepository)(nil)
