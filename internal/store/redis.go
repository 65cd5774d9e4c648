package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lox/holdem-engine/internal/game"
)

// RedisClient is the part of *redis.Client the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps snapshots under "<prefix><table id>".
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects the way the store expects.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStore wraps client. A zero ttl keeps snapshots forever.
func NewRedisStore(client RedisClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "holdem:table:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(tableID string) string {
	return r.prefix + tableID
}

func (r *RedisStore) Save(ctx context.Context, state game.TableState) error {
	data, err := game.EncodeTableState(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(state.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", state.ID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, tableID string) (game.TableState, error) {
	data, err := r.client.Get(ctx, r.key(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.TableState{}, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	if err != nil {
		return game.TableState{}, fmt.Errorf("redis get %s: %w", tableID, err)
	}
	return game.DecodeTableState(data)
}

func (r *RedisStore) Delete(ctx context.Context, tableID string) error {
	if err := r.client.Del(ctx, r.key(tableID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", tableID, err)
	}
	return nil
}
