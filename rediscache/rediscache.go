// Package rediscache provides an html2uri.Cache backed by Redis, for sharing
// renders between processes.
//
//	c, err := rediscache.New(ctx, rediscache.Config{Addr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	r := html2uri.NewRenderer(html2uri.WithCache(c))
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alnah/go-html2uri"
)

// DefaultPrefix namespaces keys written by the cache.
const DefaultPrefix = "html2uri:"

// ErrUnavailable reports that the Redis server could not be reached.
var ErrUnavailable = errors.New("redis unavailable")

// Config configures a Cache.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Prefix       string        // empty = DefaultPrefix
	TTL          time.Duration // 0 = entries never expire
	DialTimeout  time.Duration // 0 = go-redis default
	ReadTimeout  time.Duration // 0 = go-redis default
	WriteTimeout time.Duration // 0 = go-redis default
}

// Cache stores rendered URIs in Redis under prefix + sha256(key).
// Safe for concurrent use.
type Cache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Compile-time interface check.
var _ html2uri.Cache = (*Cache)(nil)

// New connects to Redis and checks the connection with PING.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, cfg.Addr, err)
	}

	return NewWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewWithClient wraps an existing client. Close closes the client.
func NewWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the URI stored under key. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	uri, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return uri, true, nil
}

// Set stores uri under key, overwriting any previous value.
func (c *Cache) Set(ctx context.Context, key, uri string) error {
	if err := c.client.Set(ctx, c.key(key), uri, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// key hashes the render key; raw content can be arbitrarily large.
func (c *Cache) key(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.prefix + hex.EncodeToString(sum[:])
}
