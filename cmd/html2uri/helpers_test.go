package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-html2uri"
)

// mockBackend is a renderBackend that records calls instead of launching Chrome.
type mockBackend struct {
	mu       sync.Mutex
	calls    int
	contents []string
	settings html2uri.Settings
	closed   bool
	workers  int
	opts     int

	uri    string
	err    error
	errFor string // content that fails with err; empty = every call fails when err is set
	cached bool
}

func (m *mockBackend) Render(_ context.Context, s html2uri.Settings, content string) (*html2uri.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.contents = append(m.contents, content)
	m.settings = s

	if m.err != nil && (m.errFor == "" || m.errFor == content) {
		return nil, m.err
	}
	return &html2uri.Result{URI: m.uri, Cached: m.cached, Settings: s}, nil
}

func (m *mockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// testEnv returns an Environment whose backend is mock.
func testEnv(mock *mockBackend, stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		NewBackend: func(workers int, opts ...html2uri.Option) renderBackend {
			mock.mu.Lock()
			mock.workers = workers
			mock.opts = len(opts)
			mock.mu.Unlock()
			return mock
		},
	}
	return env, &stdout, &stderr
}

// pngDataURI returns a w x h PNG data URI.
func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
