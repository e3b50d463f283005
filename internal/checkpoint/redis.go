package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ppiankov/factcheck/internal/model"
)

const redisKeyPrefix = "factcheck:checkpoint:"

// RedisStore stores snapshots as redis string values
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis connects to addr, which is either host:port or a redis:// URL,
// and verifies the connection with PING
func DialRedis(ctx context.Context, addr string, db int, ttl time.Duration) (*RedisStore, error) {
	opts, err := redisOptions(addr, db)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func redisOptions(addr string, db int) (*redis.Options, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr, DB: db}, nil
}

func redisKey(runID string) string {
	return redisKeyPrefix + runID
}

// Save implements Store
func (s *RedisStore) Save(ctx context.Context, runID string, state *model.WorkflowState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(runID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", runID, err)
	}
	return nil
}

// Load implements Store
func (s *RedisStore) Load(ctx context.Context, runID string) (*model.WorkflowState, bool, error) {
	data, err := s.client.Get(ctx, redisKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}

	state, err := decode(runID, data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
