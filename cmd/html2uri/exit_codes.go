package main

import (
	"errors"
	"os"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/assets"
	"github.com/alnah/go-html2uri/internal/config"
	"github.com/alnah/go-html2uri/internal/markdown"
	"github.com/alnah/go-html2uri/rediscache"
)

// Exit codes for the html2uri CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, settings or content
	ExitIO      = 3 // File not found, permission denied, cache unreachable
	ExitBrowser = 4 // Browser/rasterization errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, html2uri.ErrRaster) ||
		errors.Is(err, html2uri.ErrBrowserConnect) ||
		errors.Is(err, html2uri.ErrPageCreate) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadStyle) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, rediscache.ErrUnavailable) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, html2uri.ErrConfig) ||
		errors.Is(err, html2uri.ErrDecode) ||
		errors.Is(err, markdown.ErrConversion) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}
