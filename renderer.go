package html2uri

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Result is the outcome of a successful render.
type Result struct {
	URI      string         // PNG data URI
	Cached   bool           // served from the cache without rasterizing
	Settings Settings       // normalized settings the request was composed with
	Document VectorDocument // composed vector document, for debugging
}

// PNG returns the decoded image bytes of the result.
func (r *Result) PNG() ([]byte, error) {
	_, data, err := DecodeImageURI(r.URI)
	return data, err
}

// Renderer runs the render pipeline: compose, load, draw, extract, cache.
// Create with NewRenderer, call Render any number of times (concurrently if
// needed) and Close when done.
type Renderer struct {
	cfg        rendererConfig
	cache      Cache
	keyFunc    func(Settings, string) string
	logger     *log.Logger
	rasterizer rasterizer
	closed     atomic.Bool
}

// NewRenderer creates a Renderer. The browser is launched on the first
// render that misses the cache, not here.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		cache:   NewMemoryCache(),
		keyFunc: contentKey,
		logger:  log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(r)
	}

	// Create rasterizer if not injected (e.g., by tests)
	if r.rasterizer == nil {
		r.rasterizer = newRodRasterizer(r.cfg.browser)
	}

	return r
}

// Cache returns the cache the renderer publishes into.
func (r *Renderer) Cache() Cache {
	return r.cache
}

// Render turns content into a PNG data URI.
//
// Settings and, in document mode, the content payload are checked before
// anything asynchronous starts: failures return ErrConfig or ErrDecode and
// leave the cache untouched. A cache hit returns the stored URI without
// rasterizing. Otherwise the composed document is decoded and drawn in the
// browser; failures there return ErrRaster. Only successful renders are
// written to the cache.
//
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, s Settings, content string) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if r.closed.Load() {
		return nil, ErrClosed
	}

	// Composing
	s, err = s.Normalize()
	if err != nil {
		return nil, err
	}
	doc, err := Compose(s, content)
	if err != nil {
		return nil, err
	}

	key := r.keyFunc(s, content)
	uri, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache lookup failed", "err", err)
	} else if ok {
		r.logger.Debug("cache hit", "bytes", len(content))
		return &Result{URI: uri, Cached: true, Settings: s, Document: doc}, nil
	}

	// Loading, Drawing, Extracting
	start := time.Now()
	uri, err = r.rasterize(ctx, doc, s)
	if err != nil {
		r.logger.Debug("render failed", "err", err)
		return nil, err
	}
	r.logger.Debug("rasterized", "width", s.Width, "height", s.Height, "elapsed", time.Since(start).Round(time.Millisecond))

	// Cached/Published
	if err := r.cache.Set(ctx, key, uri); err != nil {
		r.logger.Warn("cache write failed", "err", err)
	}
	return &Result{URI: uri, Settings: s, Document: doc}, nil
}

// rasterize hands doc to the rasterizer and checks what comes back.
func (r *Renderer) rasterize(ctx context.Context, doc VectorDocument, s Settings) (string, error) {
	rctx := ctx
	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	uri, err := r.rasterizer.Rasterize(rctx, doc.DataURI(), s.Width, s.Height)
	if err != nil {
		// Caller gave up: report their error, not ours.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %v: %w", ErrRaster, r.cfg.timeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrRaster, err)
	}

	if err := verifyImageURI(uri, s.Width, s.Height); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRaster, err)
	}
	return uri, nil
}

// Close releases the browser. Render returns ErrClosed afterwards.
func (r *Renderer) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.rasterizer.Close()
}
