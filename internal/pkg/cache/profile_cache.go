// Package cache holds read-through caches in front of the student repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yigit/studentdir/internal/app/models"
)

// KeyPrefix namespaces every key written by this package
const KeyPrefix = "studentdir:profile:matric:"

// ErrCacheMiss is returned when a key is not present in the cache
var ErrCacheMiss = errors.New("cache miss")

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisClient creates a client and checks connectivity
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// ProfileCache caches student profiles by matriculation number.
// A matric number never changes owner once assigned, so entries never go stale.
type ProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewProfileCache creates a ProfileCache. A zero ttl stores entries without expiry.
func NewProfileCache(client redis.Cmdable, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		client: client,
		ttl:    ttl,
	}
}

// MatricKey returns the cache key for a matric number
func MatricKey(matricNumber string) string {
	return KeyPrefix + matricNumber
}

// Get returns the cached profile for matricNumber or ErrCacheMiss
func (c *ProfileCache) Get(ctx context.Context, matricNumber string) (*models.StudentProfile, error) {
	data, err := c.client.Get(ctx, MatricKey(matricNumber)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, nil
}

// Set stores a matriculated profile. Profiles without a matric number are ignored.
func (c *ProfileCache) Set(ctx context.Context, profile models.StudentProfile) error {
	if profile.MatricNumber == nil {
		return nil
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if err := c.client.Set(ctx, MatricKey(*profile.MatricNumber), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// NoopProfileCache is used when Redis is disabled; every lookup misses.
type NoopProfileCache struct{}

// Get always misses
func (NoopProfileCache) Get(context.Context, string) (*models.StudentProfile, error) {
	return nil, ErrCacheMiss
}

// Set does nothing
func (NoopProfileCache) Set(context.Context, models.StudentProfile) error {
	return nil
}
