package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jim4golf/simsy-reporting-api/pkg/config"
)

// RedisStore implements the Store interface using Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store instance
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
	}, nil
}

// key prefixes for different types of data
const (
	sessionPrefix      = "session:"
	serviceTokenPrefix = "svctoken:"
)

// SaveSession stores a session marker with the given TTL
func (s *RedisStore) SaveSession(ctx context.Context, record *Record, ttl time.Duration) error {
	now := time.Now()
	record.CreatedAt = now.Unix()
	record.ExpiresAt = now.Add(ttl).Unix()

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, sessionPrefix+record.TokenID, data, ttl).Err()
}

// GetSession retrieves a session marker
func (s *RedisStore) GetSession(ctx context.Context, tokenID string) (*Record, error) {
	data, err := s.client.Get(ctx, sessionPrefix+tokenID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteSession removes a session marker
func (s *RedisStore) DeleteSession(ctx context.Context, tokenID string) error {
	deleted, err := s.client.Del(ctx, sessionPrefix+tokenID).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveServiceToken stores a service-token mapping without expiry
func (s *RedisStore) SaveServiceToken(ctx context.Context, token *ServiceToken) error {
	token.CreatedAt = time.Now().Unix()

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, serviceTokenPrefix+token.TokenID, data, 0).Err()
}

// GetServiceToken retrieves a service-token mapping
func (s *RedisStore) GetServiceToken(ctx context.Context, tokenID string) (*ServiceToken, error) {
	data, err := s.client.Get(ctx, serviceTokenPrefix+tokenID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var token ServiceToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteServiceToken removes a service-token mapping
func (s *RedisStore) DeleteServiceToken(ctx context.Context, tokenID string) error {
	deleted, err := s.client.Del(ctx, serviceTokenPrefix+tokenID).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
