package main

import (
	"context"
	"errors"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/assets"
	"github.com/alnah/go-html2uri/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input")
	ErrReadStyle          = errors.New("failed to read style file")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrOutputConflict     = errors.New("conflicting output paths")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrBatchFailed        = errors.New("some inputs failed")
)

// hintFor returns an actionable hint for err, or "".
// Hints that need call-site data (config search paths, Redis address) are
// attached where the error is created.
func hintFor(err error) string {
	switch {
	case errors.Is(err, html2uri.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, html2uri.ErrConfig):
		return hints.ForSettings()
	case errors.Is(err, html2uri.ErrDecode):
		return hints.ForDocument()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
