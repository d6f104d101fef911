// Package markdown converts Markdown to XHTML fragments that can be placed
// inside an SVG foreignObject.
//
// Output is a fragment, not a document, and code blocks are highlighted with
// inline styles: an image has no access to external stylesheets.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates Markdown conversion failed.
var ErrConversion = errors.New("markdown conversion failed")

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "github"

// Converter converts Markdown to XHTML using goldmark (pure Go).
type Converter struct {
	md goldmark.Markdown
}

// Option configures a Converter.
type Option func(*options)

type options struct {
	highlightStyle string
	hardWraps      bool
}

// WithHighlightStyle selects the chroma style for code blocks.
func WithHighlightStyle(name string) Option {
	return func(o *options) {
		if name != "" {
			o.highlightStyle = name
		}
	}
}

// WithHardWraps renders newlines inside paragraphs as <br />.
func WithHardWraps() Option {
	return func(o *options) {
		o.hardWraps = true
	}
}

// NewConverter creates a Converter with GFM extensions and syntax highlighting.
func NewConverter(opts ...Option) *Converter {
	o := options{highlightStyle: DefaultHighlightStyle}
	for _, opt := range opts {
		opt(&o)
	}

	htmlOpts := []renderer.Option{
		html.WithXHTML(), // foreignObject content is parsed as XML
		// No WithUnsafe: raw HTML in Markdown is dropped.
	}
	if o.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle(o.highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles
				),
			),
		),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Converter{md: md}
}

// ToXHTML converts Markdown content to an XHTML fragment.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (c *Converter) ToXHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
