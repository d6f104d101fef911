package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-html2uri"
)

func newTestServer(mock *mockBackend, css string, maxBody int64) http.Handler {
	return newServer(mock, css, maxBody, log.New(io.Discard))
}

func postRender(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// TestServer_Render - POST /render
// ---------------------------------------------------------------------------

func TestServer_Render(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		mock := &mockBackend{uri: "data:image/png;base64,OK", cached: true}
		h := newTestServer(mock, "", 0)

		rec := postRender(t, h, `{"settings":{"width":100,"height":50,"isDocument":false,"fontColor":"red"},"content":"<b>Hi</b>"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var resp renderResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if resp.URI != "data:image/png;base64,OK" || !resp.Cached {
			t.Errorf("response = %+v, want the URI with cached=true", resp)
		}
		if mock.contents[0] != "<b>Hi</b>" {
			t.Errorf("content = %q, want <b>Hi</b>", mock.contents[0])
		}
		want := html2uri.Settings{Width: 100, Height: 50, FontColor: "red"}
		if mock.settings != want {
			t.Errorf("settings = %+v, want %+v", mock.settings, want)
		}
	})

	t.Run("absent settings use defaults", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{"content":"x"}`, `{"settings":null,"content":"x"}`} {
			mock := &mockBackend{uri: "data:image/png;base64,OK"}
			rec := postRender(t, newTestServer(mock, "", 0), body)

			if rec.Code != http.StatusOK {
				t.Fatalf("%s: status = %d, want 200", body, rec.Code)
			}
			if mock.settings != html2uri.DefaultSettings() {
				t.Errorf("%s: settings = %+v, want DefaultSettings()", body, mock.settings)
			}
		}
	})

	t.Run("server style fills missing css", func(t *testing.T) {
		t.Parallel()

		mock := &mockBackend{uri: "data:image/png;base64,OK"}
		h := newTestServer(mock, "p{color:red}", 0)

		postRender(t, h, `{"content":"x"}`)
		if mock.settings.CSS != "p{color:red}" {
			t.Errorf("CSS = %q, want the server style", mock.settings.CSS)
		}

		postRender(t, h, `{"settings":{"isDocument":false,"css":"b{}"},"content":"x"}`)
		if mock.settings.CSS != "b{}" {
			t.Errorf("CSS = %q, want the request css", mock.settings.CSS)
		}
	})
}

// ---------------------------------------------------------------------------
// TestServer_RenderErrors - Error to status mapping
// ---------------------------------------------------------------------------

func TestServer_RenderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		renderErr  error
		wantStatus int
		wantCalls  int
	}{
		{"malformed body", `{"content":`, nil, http.StatusBadRequest, 0},
		{"settings without isDocument", `{"settings":{"width":10},"content":"x"}`, nil, http.StatusBadRequest, 0},
		{"negative width", `{"settings":{"width":-1,"isDocument":false},"content":"x"}`, nil, http.StatusBadRequest, 0},
		{"content decode", `{"content":"x"}`, fmt.Errorf("%w: not JSON", html2uri.ErrDecode), http.StatusBadRequest, 1},
		{"raster", `{"content":"x"}`, fmt.Errorf("%w: image decode failed", html2uri.ErrRaster), http.StatusBadGateway, 1},
		{"closed", `{"content":"x"}`, html2uri.ErrClosed, http.StatusServiceUnavailable, 1},
		{"unexpected", `{"content":"x"}`, errors.New("boom"), http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockBackend{uri: "data:image/png;base64,OK", err: tt.renderErr}
			rec := postRender(t, newTestServer(mock, "", 0), tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("body = %q, want an error JSON object", rec.Body.String())
			}
			if mock.callCount() != tt.wantCalls {
				t.Errorf("renderer called %d times, want %d", mock.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestServer_BodyTooLarge(t *testing.T) {
	t.Parallel()

	mock := &mockBackend{uri: "data:image/png;base64,OK"}
	h := newTestServer(mock, "", 64)

	body := `{"content":"` + strings.Repeat("x", 200) + `"}`
	rec := postRender(t, h, body)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if mock.callCount() != 0 {
		t.Error("renderer should not be called")
	}
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	h := newTestServer(&mockBackend{}, "", 0)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/render", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestServer_RecoversPanics(t *testing.T) {
	t.Parallel()

	h := newServer(panickingRenderer{}, "", 0, log.New(io.Discard))
	rec := postRender(t, h, `{"content":"x"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

type panickingRenderer struct{}

func (panickingRenderer) Render(context.Context, html2uri.Settings, string) (*html2uri.Result, error) {
	panic("renderer exploded")
}

// ---------------------------------------------------------------------------
// TestListenAndServe - Graceful shutdown
// ---------------------------------------------------------------------------

func TestListenAndServe_Shutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

	done := make(chan error, 1)
	go func() { done <- listenAndServe(ctx, srv, log.New(io.Discard)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("listenAndServe() error = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listenAndServe() did not return after cancel")
	}
}

func TestListenAndServe_ListenError(t *testing.T) {
	t.Parallel()

	srv := &http.Server{Addr: "256.0.0.1:bad", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

	err := listenAndServe(context.Background(), srv, log.New(io.Discard))
	if err == nil {
		t.Error("listenAndServe() should fail on an invalid address")
	}
}
