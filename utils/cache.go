package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mindease/config"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

var (
	// CacheClient holds booking flows, profile forms and list view state.
	CacheClient *redis.Client
	// SessionClient holds portal sessions.
	SessionClient *redis.Client
)

// ErrNotFound is returned when a stored document is missing or expired.
var ErrNotFound = errors.New("not found")

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client the portal uses.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetSessionClient returns the Redis client for portal sessions.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		SessionClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
	}
	return SessionClient
}

// JSONStore keeps JSON documents in Redis under a key prefix with a sliding TTL.
type JSONStore[T any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewJSONStore[T any](client redis.Cmdable, prefix string, ttl time.Duration) *JSONStore[T] {
	return &JSONStore[T]{client: client, prefix: prefix, ttl: ttl}
}

func (s *JSONStore[T]) key(id string) string {
	return s.prefix + id
}

// Get loads the document stored under id, or ErrNotFound.
func (s *JSONStore[T]) Get(ctx context.Context, id string) (*T, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key(id), err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.key(id), err)
	}
	return &v, nil
}

// Put stores v under id and refreshes the TTL.
func (s *JSONStore[T]) Put(ctx context.Context, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key(id), err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.key(id), err)
	}
	return nil
}

func (s *JSONStore[T]) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
