package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"orderreport/internal/model"
)

const redisKeyPrefix = "batch:"

// RedisStore keeps batches as JSON strings that expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOptions struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	const op = "batch.NewRedisStore"

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStore{client: client, ttl: opts.TTL}, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, orders []model.Order) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if orders == nil {
		orders = []model.Order{}
	}

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set batch: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]model.Order, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return orders, nil
}

// Purge is a no-op: Redis expires batches on its own.
func (s *RedisStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
