package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/config"
	"github.com/alnah/go-html2uri/internal/hints"
	"github.com/alnah/go-html2uri/rediscache"
)

// buildCache selects the render cache: none when disabled, Redis when an
// address is configured, else in-memory. The returned func releases it.
func buildCache(ctx context.Context, cc config.CacheConfig, logger *log.Logger) (html2uri.Cache, func() error, error) {
	noop := func() error { return nil }

	if cc.Disabled {
		logger.Debug("render cache disabled")
		return html2uri.NullCache{}, noop, nil
	}
	if cc.Redis.Addr == "" {
		return html2uri.NewMemoryCache(), noop, nil
	}

	ttl, err := cc.Redis.TTLDuration()
	if err != nil {
		return nil, nil, err
	}
	rc, err := rediscache.New(ctx, rediscache.Config{
		Addr:     cc.Redis.Addr,
		Password: cc.Redis.Password,
		DB:       cc.Redis.DB,
		Prefix:   cc.Redis.Prefix,
		TTL:      ttl,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w%s", err, hints.ForRedis(cc.Redis.Addr))
	}
	logger.Debug("using redis cache", "addr", cc.Redis.Addr, "db", cc.Redis.DB, "ttl", ttl)
	return rc, rc.Close, nil
}
