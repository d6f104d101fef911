package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-html2uri"
)

// renderBackend is a renderer that owns browser resources.
type renderBackend interface {
	html2uri.ContentRenderer
	Close() error
}

// Compile-time interface check.
var _ renderBackend = (*html2uri.RendererPool)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewBackend creates the renderer used by render and serve.
	NewBackend func(workers int, opts ...html2uri.Option) renderBackend
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewBackend: func(workers int, opts ...html2uri.Option) renderBackend {
			return html2uri.NewRendererPool(workers, opts...)
		},
	}
}
