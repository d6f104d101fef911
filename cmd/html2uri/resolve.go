package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/assets"
	"github.com/alnah/go-html2uri/internal/config"
	"github.com/alnah/go-html2uri/internal/fileutil"
	"github.com/alnah/go-html2uri/internal/hints"
)

// loadConfig loads the config named by the --config flag, else by
// HTML2URI_CONFIG, else returns the defaults.
func loadConfig(flagName string, env *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, err
	}
	return cfg, nil
}

// mergeBrowserFlags applies browser flags over cfg.
func mergeBrowserFlags(f *browserFlags, cfg *config.Config) error {
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if f.workers > 0 {
		cfg.Browser.Workers = f.workers
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil {
			return fmt.Errorf("%w: %q (use format like 30s, 2m, 1m30s)", ErrInvalidTimeout, f.timeout)
		}
		if d <= 0 {
			return fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, f.timeout)
		}
		cfg.Browser.Timeout = d.String()
	}
	if f.bin != "" {
		cfg.Browser.Bin = f.bin
	}
	if f.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	return nil
}

// mergeRenderFlags applies render command flags over cfg.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) error {
	if err := mergeBrowserFlags(&f.browser, cfg); err != nil {
		return err
	}
	if f.style != "" {
		cfg.Render.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Render.AssetPath = f.assetPath
	}
	if f.from != "" {
		cfg.Render.From = strings.ToLower(f.from)
	}
	return nil
}

// validateWorkers checks the --workers flag range.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// buildSettings assembles render settings. The render section of the
// config is the base, --settings replaces it, and individual flags
// override single fields.
func buildSettings(f *settingsFlags, rc config.RenderConfig) (html2uri.Settings, error) {
	s := html2uri.Settings{
		Width:      rc.Width,
		Height:     rc.Height,
		IsDocument: rc.IsDocument,
		FontFamily: rc.FontFamily,
		FontSize:   rc.FontSize,
		FontWeight: rc.FontWeight,
		FontColor:  rc.FontColor,
	}

	if f.json != "" {
		parsed, err := html2uri.ParseSettings([]byte(f.json))
		if err != nil {
			return html2uri.Settings{}, err
		}
		s = parsed
	}

	if f.width != 0 {
		s.Width = f.width
	}
	if f.height != 0 {
		s.Height = f.height
	}
	if f.document {
		s.IsDocument = true
	}
	if f.fontFamily != "" {
		s.FontFamily = f.fontFamily
	}
	if f.fontSize != 0 {
		s.FontSize = f.fontSize
	}
	if f.fontWeight != "" {
		s.FontWeight = f.fontWeight
	}
	if f.fontColor != "" {
		s.FontColor = f.fontColor
	}

	if err := s.Validate(); err != nil {
		return html2uri.Settings{}, err
	}
	return s, nil
}

// resolveStyle returns the stylesheet selected by style: a .css file when it
// looks like a path, else a preset looked up in assetPath then the built-ins.
func resolveStyle(style, assetPath string) (string, error) {
	if style == "" {
		return "", nil
	}

	if fileutil.IsFilePath(style) || strings.HasSuffix(style, ".css") {
		data, err := os.ReadFile(style) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadStyle, err)
		}
		return string(data), nil
	}

	resolver, err := assets.NewStyleResolver(assetPath)
	if err != nil {
		return "", err
	}
	return resolver.LoadStyle(style)
}

// encodeDocument turns an XHTML fragment into the JSON string payload
// expected in document mode.
func encodeDocument(fragment string) (string, error) {
	data, err := json.Marshal(fragment)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// rendererOptions maps the browser and cache config onto renderer options.
func rendererOptions(cfg *config.Config, cache html2uri.Cache, logger *log.Logger) ([]html2uri.Option, error) {
	timeout, err := cfg.Browser.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []html2uri.Option{
		html2uri.WithTimeout(timeout),
		html2uri.WithCache(cache),
		html2uri.WithLogger(logger),
	}
	if cfg.Browser.Bin != "" {
		opts = append(opts, html2uri.WithBrowserBin(cfg.Browser.Bin))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, html2uri.WithNoSandbox())
	}
	if cfg.Cache.KeyIncludesSettings {
		opts = append(opts, html2uri.WithSettingsInCacheKey())
	}
	return opts, nil
}
