package html2uri

import (
	"time"

	"github.com/charmbracelet/log"
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout time.Duration // 0 = no limit on the decode wait
	browser browserOptions
}

// WithTimeout bounds each rasterization, including the image decode wait.
// Without it a decode that never settles keeps its request pending until
// the caller's context ends.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2uri: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithCache sets the render cache. Pass the same Cache to several
// renderers to share renders between them. Defaults to a new MemoryCache.
func WithCache(c Cache) Option {
	return func(r *Renderer) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithSettingsInCacheKey keys the cache on settings and content instead of
// content alone, so that re-rendering the same content with different
// settings reaches the rasterizer again.
func WithSettingsInCacheKey() Option {
	return func(r *Renderer) {
		r.keyFunc = settingsContentKey
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
// Defaults to a logger that discards everything.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBrowserBin sets the Chrome/Chromium binary. It takes precedence over
// the ROD_BROWSER_BIN environment variable.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.cfg.browser.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (needed in most containers).
func WithNoSandbox() Option {
	return func(r *Renderer) {
		r.cfg.browser.noSandbox = true
	}
}

// withRasterizer replaces the browser backend (tests only).
func withRasterizer(rz rasterizer) Option {
	return func(r *Renderer) {
		r.rasterizer = rz
	}
}
