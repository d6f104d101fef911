// Package config loads the YAML configuration of the html2uri command.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alnah/go-html2uri"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxFontFamilyLength  = 200  // "Inter, \"Helvetica Neue\", Arial, sans-serif"
	MaxFontKeywordLength = 32   // "bold", "600", "inherit"
	MaxColorLength       = 64   // "#1f6feb", "rgb(12, 34, 56)"
	MaxStyleLength       = 2048 // style name or path
	MaxPathLength        = 4096 // PATH_MAX on Linux
	MaxAddrLength        = 255  // host:port
	MaxPrefixLength      = 64   // Redis key prefix
)

// MaxWorkers caps browser.workers: each worker owns a Chrome instance.
const MaxWorkers = 64

// Input format values for render.from.
const (
	FromHTML     = "html"
	FromMarkdown = "markdown"
)

// Config holds all configuration for the html2uri command.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Browser BrowserConfig `yaml:"browser"`
	Cache   CacheConfig   `yaml:"cache"`
	Server  ServerConfig  `yaml:"server"`
}

// RenderConfig holds default render settings.
type RenderConfig struct {
	Width          int     `yaml:"width"`          // pixels, 0 = 64
	Height         int     `yaml:"height"`         // pixels, 0 = 64
	IsDocument     bool    `yaml:"isDocument"`     // content is a JSON-encoded string
	FontFamily     string  `yaml:"fontFamily"`     // empty = sans-serif
	FontSize       float64 `yaml:"fontSize"`       // pixels, 0 = 48
	FontWeight     string  `yaml:"fontWeight"`     // empty = inherit
	FontColor      string  `yaml:"fontColor"`      // empty = inherit
	Style          string  `yaml:"style"`          // style preset name or .css path (empty = none)
	AssetPath      string  `yaml:"assetPath"`      // directory with styles/{name}.css overrides
	From           string  `yaml:"from"`           // "html" (default) or "markdown"
	HighlightStyle string  `yaml:"highlightStyle"` // chroma style for Markdown code blocks
}

// BrowserConfig holds rasterizer options.
type BrowserConfig struct {
	Timeout   string `yaml:"timeout"`   // Go duration, e.g. "30s"
	Workers   int    `yaml:"workers"`   // 0 = auto
	Bin       string `yaml:"bin"`       // Chrome binary (empty = ROD_BROWSER_BIN or managed Chromium)
	NoSandbox bool   `yaml:"noSandbox"` // required in most containers
}

// CacheConfig holds render cache options.
type CacheConfig struct {
	Disabled            bool        `yaml:"disabled"`            // every request rasterizes
	KeyIncludesSettings bool        `yaml:"keyIncludesSettings"` // key on settings and content
	Redis               RedisConfig `yaml:"redis"`
}

// RedisConfig selects a shared Redis cache. Empty Addr keeps renders in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      string `yaml:"ttl"` // Go duration, empty or "0" = never expire
}

// ServerConfig holds options for the serve command.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"` // 0 = DefaultMaxBodyBytes
}

// Defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultServerAddr   = ":8080"
	DefaultRedisPrefix  = "html2uri:"
	DefaultMaxBodyBytes = 1 << 20
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Render:  RenderConfig{From: FromHTML},
		Browser: BrowserConfig{Timeout: DefaultTimeout.String()},
		Cache:   CacheConfig{Redis: RedisConfig{Prefix: DefaultRedisPrefix}},
		Server:  ServerConfig{Addr: DefaultServerAddr, MaxBodyBytes: DefaultMaxBodyBytes},
	}
}

// Validate checks ranges and field lengths.
// Called automatically by LoadConfig, but available for callers that
// assemble a Config themselves.
func (c *Config) Validate() error {
	if err := c.Render.validate(); err != nil {
		return err
	}
	if err := c.Browser.validate(); err != nil {
		return err
	}
	if err := c.Cache.Redis.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must not be negative, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}
	return nil
}

func (r *RenderConfig) validate() error {
	if r.Width < 0 || r.Width > html2uri.MaxDimension {
		return fmt.Errorf("%w: render.width must be between 0 and %d, got %d", ErrInvalidValue, html2uri.MaxDimension, r.Width)
	}
	if r.Height < 0 || r.Height > html2uri.MaxDimension {
		return fmt.Errorf("%w: render.height must be between 0 and %d, got %d", ErrInvalidValue, html2uri.MaxDimension, r.Height)
	}
	if r.FontSize < 0 || math.IsNaN(r.FontSize) || math.IsInf(r.FontSize, 0) {
		return fmt.Errorf("%w: render.fontSize must be a non-negative number", ErrInvalidValue)
	}
	switch r.From {
	case "", FromHTML, FromMarkdown:
	default:
		return fmt.Errorf("%w: render.from must be html or markdown, got %q", ErrInvalidValue, r.From)
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"render.fontFamily", r.FontFamily, MaxFontFamilyLength},
		{"render.fontWeight", r.FontWeight, MaxFontKeywordLength},
		{"render.fontColor", r.FontColor, MaxColorLength},
		{"render.style", r.Style, MaxStyleLength},
		{"render.assetPath", r.AssetPath, MaxPathLength},
		{"render.highlightStyle", r.HighlightStyle, MaxFontKeywordLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	return nil
}

func (b *BrowserConfig) validate() error {
	if _, err := b.TimeoutDuration(); err != nil {
		return err
	}
	if b.Workers < 0 || b.Workers > MaxWorkers {
		return fmt.Errorf("%w: browser.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, b.Workers)
	}
	return validateFieldLength("browser.bin", b.Bin, MaxPathLength)
}

// TimeoutDuration parses browser.timeout. Empty means DefaultTimeout.
func (b *BrowserConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: browser.timeout must be positive, got %s", ErrInvalidValue, b.Timeout)
	}
	return d, nil
}

func (r *RedisConfig) validate() error {
	if _, err := r.TTLDuration(); err != nil {
		return err
	}
	if r.DB < 0 {
		return fmt.Errorf("%w: cache.redis.db must not be negative, got %d", ErrInvalidValue, r.DB)
	}
	if err := validateFieldLength("cache.redis.addr", r.Addr, MaxAddrLength); err != nil {
		return err
	}
	return validateFieldLength("cache.redis.prefix", r.Prefix, MaxPrefixLength)
}

// TTLDuration parses cache.redis.ttl. Empty means no expiry.
func (r *RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("%w: cache.redis.ttl: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: cache.redis.ttl must not be negative, got %s", ErrInvalidValue, r.TTL)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}
