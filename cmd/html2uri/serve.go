package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/config"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// renderRequest is the body of POST /render.
// Settings has the data-settings shape; absent means DefaultSettings.
// Content is markup as-is, it is not URI-encoded.
type renderRequest struct {
	Settings json.RawMessage `json:"settings,omitempty"`
	Content  string          `json:"content"`
}

// renderResponse is the body of a successful POST /render.
type renderResponse struct {
	URI    string `json:"uri"`
	Cached bool   `json:"cached"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// server is the HTTP render trigger.
type server struct {
	renderer     html2uri.ContentRenderer
	css          string // applied when a request sets no css
	maxBodyBytes int64
	logger       *log.Logger
}

// newServer builds the HTTP routes.
func newServer(r html2uri.ContentRenderer, css string, maxBodyBytes int64, logger *log.Logger) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = config.DefaultMaxBodyBytes
	}
	s := &server{renderer: r, css: css, maxBodyBytes: maxBodyBytes, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)

	router.Get("/healthz", s.handleHealth)
	router.Post("/render", s.handleRender)
	return router
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	settings := html2uri.DefaultSettings()
	if len(req.Settings) > 0 && string(req.Settings) != "null" {
		parsed, err := html2uri.ParseSettings(req.Settings)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		settings = parsed
	}
	if settings.CSS == "" {
		settings.CSS = s.css
	}

	res, err := s.renderer.Render(r.Context(), settings, req.Content)
	if err != nil {
		s.logger.Warn("render failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{URI: res.URI, Cached: res.Cached})
}

// statusFor maps render errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, html2uri.ErrConfig), errors.Is(err, html2uri.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, html2uri.ErrRaster):
		return http.StatusBadGateway
	case errors.Is(err, html2uri.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logRequests logs each request at debug level with its status and duration.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// runServeCmd serves the HTTP render trigger until ctx is canceled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeBrowserFlags(&flags.browser, cfg); err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.style != "" {
		cfg.Render.Style = flags.style
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	configureMaxProcs(logger)

	css, err := resolveStyle(cfg.Render.Style, cfg.Render.AssetPath)
	if err != nil {
		return err
	}

	cache, closeCache, err := buildCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	opts, err := rendererOptions(cfg, cache, logger)
	if err != nil {
		return err
	}
	workers := html2uri.ResolvePoolSize(cfg.Browser.Workers)
	backend := env.NewBackend(workers, opts...)
	defer func() { _ = backend.Close() }()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newServer(backend, css, cfg.Server.MaxBodyBytes, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return listenAndServe(ctx, srv, logger)
}

// listenAndServe runs srv until ctx is canceled, then shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
