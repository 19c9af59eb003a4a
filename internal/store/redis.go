package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis connection timeout.
const redisConnectTimeout = 10 * time.Second

// RedisAttemptStore is a Redis-backed implementation of AttemptStore.
// Use it when the service runs more than one replica, so a callback can
// land on a different instance than the one that initiated the attempt.
type RedisAttemptStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host   string
	Port   int
	Proto  string // "redis" or "rediss" (TLS)
	Pass   string
	DB     int
	Prefix string
}

// NewRedisAttemptStore creates a new Redis-backed attempt store.
func NewRedisAttemptStore(cfg *RedisConfig) (*RedisAttemptStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := &redis.Options{
		Addr:     addr,
		Password: cfg.Pass,
		DB:       cfg.DB,
	}

	// Enable TLS for rediss:// protocol
	if cfg.Proto == "rediss" {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "attempt:"
	}

	return &RedisAttemptStore{
		client: client,
		prefix: prefix,
		ttl:    AttemptTTL,
	}, nil
}

// Store saves an attempt under its id.
func (s *RedisAttemptStore) Store(id string, data *AttemptData) error {
	ctx := context.Background()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling attempt data: %w", err)
	}

	key := s.prefix + id
	if err := s.client.Set(ctx, key, jsonData, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing attempt: %w", err)
	}

	return nil
}

// Get retrieves and deletes the data for an attempt id.
// Returns nil if the attempt doesn't exist or has expired.
func (s *RedisAttemptStore) Get(id string) (*AttemptData, error) {
	ctx := context.Background()
	key := s.prefix + id

	// Get and delete atomically using GETDEL (Redis 6.2+)
	jsonData, err := s.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Attempt doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("getting attempt: %w", err)
	}

	var data AttemptData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling attempt data: %w", err)
	}

	return &data, nil
}

// Close closes the Redis connection.
func (s *RedisAttemptStore) Close() error {
	return s.client.Close()
}
