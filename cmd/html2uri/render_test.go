package main

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2uri"
)

// ---------------------------------------------------------------------------
// TestPlanInputs - Output path assignment
// ---------------------------------------------------------------------------

func TestPlanInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		output  string
		outdir  string
		want    []renderInput
		wantErr error
	}{
		{
			name: "print to stdout",
			args: []string{"a.html", "-"},
			want: []renderInput{{Path: "a.html"}, {Path: "-"}},
		},
		{
			name:   "single output file",
			args:   []string{"a.html"},
			output: "out.png",
			want:   []renderInput{{Path: "a.html", Output: "out.png"}},
		},
		{
			name:   "outdir replaces extensions",
			args:   []string{"src/a.html", "b.md", "-"},
			outdir: "out",
			want: []renderInput{
				{Path: "src/a.html", Output: filepath.Join("out", "a.png")},
				{Path: "b.md", Output: filepath.Join("out", "b.png")},
				{Path: "-", Output: filepath.Join("out", "stdin.png")},
			},
		},
		{name: "no inputs", args: nil, wantErr: ErrNoInput},
		{name: "output with several inputs", args: []string{"a", "b"}, output: "x.png", wantErr: ErrOutputConflict},
		{name: "output with outdir", args: []string{"a"}, output: "x.png", outdir: "out", wantErr: ErrOutputConflict},
		{name: "stdin twice", args: []string{"-", "a.html", "-"}, wantErr: ErrUsage},
		{name: "stdin twice with outdir", args: []string{"-", "-"}, outdir: "out", wantErr: ErrUsage},
		{name: "same base name in outdir", args: []string{"a/x.html", "b/x.html"}, outdir: "out", wantErr: ErrOutputConflict},
		{name: "same stem different extension", args: []string{"x.html", "x.md"}, outdir: "out", wantErr: ErrOutputConflict},
		{
			name: "same base name printed to stdout",
			args: []string{"a/x.html", "b/x.html"},
			want: []renderInput{{Path: "a/x.html"}, {Path: "b/x.html"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := planInputs(tt.args, tt.output, tt.outdir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("planInputs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("planInputs() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("planInputs() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("input[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderBatch - Concurrency and ordering
// ---------------------------------------------------------------------------

func TestRenderBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var inputs []renderInput
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		path := filepath.Join(dir, name+".html")
		if err := os.WriteFile(path, []byte("<p>"+name+"</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, renderInput{Path: path})
	}

	mock := &mockBackend{uri: "data:image/png;base64,AAAA", err: html2uri.ErrRaster, errFor: "<p>c</p>"}
	params := &renderParams{settings: html2uri.Settings{Width: 10, Height: 10}}

	results := renderBatch(context.Background(), mock, 3, inputs, params)

	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r.Input != inputs[i].Path {
			t.Errorf("result[%d].Input = %q, want %q", i, r.Input, inputs[i].Path)
		}
	}
	if !errors.Is(results[2].Err, html2uri.ErrRaster) {
		t.Errorf("result[2].Err = %v, want ErrRaster", results[2].Err)
	}
	if summary := countResults(results); summary.Succeeded != 4 || summary.Failed != 1 {
		t.Errorf("countResults() = %+v, want 4 succeeded, 1 failed", summary)
	}
	if mock.callCount() != 5 {
		t.Errorf("renderer called %d times, want 5", mock.callCount())
	}
	if mock.settings != params.settings {
		t.Errorf("renderer got settings %+v, want %+v", mock.settings, params.settings)
	}
}

func TestRenderBatch_Empty(t *testing.T) {
	t.Parallel()

	if results := renderBatch(context.Background(), &mockBackend{}, 2, nil, &renderParams{}); results != nil {
		t.Errorf("renderBatch(nil) = %v, want nil", results)
	}
}

func TestRenderBatch_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockBackend{}
	results := renderBatch(ctx, mock, 2, []renderInput{{Path: "a"}, {Path: "b"}}, &renderParams{})

	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
	if mock.callCount() != 0 {
		t.Errorf("renderer called %d times after cancellation, want 0", mock.callCount())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Render - End-to-end through the command dispatcher
// ---------------------------------------------------------------------------

func TestRunMain_Render(t *testing.T) {
	t.Parallel()

	t.Run("stdin to stdout", func(t *testing.T) {
		t.Parallel()

		mock := &mockBackend{uri: "data:image/png;base64,OK"}
		env, stdout, stderr := testEnv(mock, "<b>Hi</b>")

		code := runMain(context.Background(), []string{"html2uri", "render", "--width", "100", "--height", "50", "--font-color", "red", "-"}, env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr.String())
		}
		if got := strings.TrimSpace(stdout.String()); got != "data:image/png;base64,OK" {
			t.Errorf("stdout = %q, want the data URI", got)
		}
		if mock.contents[0] != "<b>Hi</b>" {
			t.Errorf("rendered content = %q, want <b>Hi</b>", mock.contents[0])
		}
		want := html2uri.Settings{Width: 100, Height: 50, FontColor: "red"}
		if mock.settings != want {
			t.Errorf("settings = %+v, want %+v", mock.settings, want)
		}
		if mock.workers != 1 {
			t.Errorf("backend workers = %d, want 1 for a single input", mock.workers)
		}
		if !mock.closed {
			t.Error("backend should be closed after the command")
		}
	})

	t.Run("markdown with style to PNG file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "note.md")
		if err := os.WriteFile(input, []byte("# Title\n\nsome *text*"), 0o644); err != nil {
			t.Fatal(err)
		}
		outdir := filepath.Join(dir, "out")

		mock := &mockBackend{uri: pngDataURI(t, 8, 4)}
		env, stdout, stderr := testEnv(mock, "")

		code := runMain(context.Background(), []string{
			"html2uri", "render", "--from", "markdown", "--style", "card",
			"--width", "8", "--height", "4", "--outdir", outdir, input,
		}, env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr.String())
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout should stay empty when writing files, got %q", stdout.String())
		}
		if !strings.Contains(mock.contents[0], "<h1>Title</h1>") || !strings.Contains(mock.contents[0], "<em>text</em>") {
			t.Errorf("rendered content = %q, want converted Markdown", mock.contents[0])
		}
		if mock.settings.CSS != mustStyle(t, "card") {
			t.Error("settings should carry the card preset stylesheet")
		}

		f, err := os.Open(filepath.Join(outdir, "note.png"))
		if err != nil {
			t.Fatalf("output PNG missing: %v", err)
		}
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		if cfg.Width != 8 || cfg.Height != 4 {
			t.Errorf("PNG is %dx%d, want 8x4", cfg.Width, cfg.Height)
		}
		if !strings.Contains(stderr.String(), "Created "+filepath.Join(outdir, "note.png")) {
			t.Errorf("stderr should report the created file, got %q", stderr.String())
		}
	})

	t.Run("markdown in document mode is JSON-encoded", func(t *testing.T) {
		t.Parallel()

		mock := &mockBackend{uri: "data:image/png;base64,OK"}
		env, _, stderr := testEnv(mock, "plain")

		code := runMain(context.Background(), []string{"html2uri", "render", "--from", "markdown", "--document", "-"}, env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr.String())
		}
		var doc string
		if err := json.Unmarshal([]byte(mock.contents[0]), &doc); err != nil {
			t.Fatalf("rendered content %q is not a JSON string: %v", mock.contents[0], err)
		}
		if strings.TrimSpace(doc) != "<p>plain</p>" {
			t.Errorf("document = %q, want <p>plain</p>", doc)
		}
	})

	t.Run("failed input reports and sets exit code", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		good := filepath.Join(dir, "good.html")
		bad := filepath.Join(dir, "bad.html")
		for path, content := range map[string]string{good: "ok", bad: "boom"} {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		mock := &mockBackend{uri: "data:image/png;base64,OK", err: html2uri.ErrRaster, errFor: "boom"}
		env, stdout, stderr := testEnv(mock, "")

		code := runMain(context.Background(), []string{"html2uri", "render", good, bad}, env)

		if code != ExitBrowser {
			t.Errorf("exit code = %d, want %d", code, ExitBrowser)
		}
		if !strings.Contains(stderr.String(), "FAILED "+bad) {
			t.Errorf("stderr should name the failed input, got %q", stderr.String())
		}
		if !strings.Contains(stderr.String(), "1 succeeded, 1 failed") {
			t.Errorf("stderr should print a summary, got %q", stderr.String())
		}
		if strings.TrimSpace(stdout.String()) != "data:image/png;base64,OK" {
			t.Errorf("stdout = %q, want the URI of the good input", stdout.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv(&mockBackend{}, "")
		code := runMain(context.Background(), []string{"html2uri", "render", filepath.Join(t.TempDir(), "absent.html")}, env)

		if code != ExitIO {
			t.Errorf("exit code = %d, want %d; stderr: %s", code, ExitIO, stderr.String())
		}
	})

	usage := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{"render"}},
		{"unknown flag", []string{"render", "--nope", "-"}},
		{"invalid settings JSON", []string{"render", "--settings", `{"width":1}`, "-"}},
		{"negative width", []string{"render", "--width", "-1", "-"}},
		{"invalid timeout", []string{"render", "--timeout", "soon", "-"}},
		{"too many workers", []string{"render", "--workers", "1000", "-"}},
		{"unknown style", []string{"render", "--style", "nope", "-"}},
		{"unknown input format", []string{"render", "--from", "rst", "-"}},
		{"stdin twice", []string{"render", "-", "-"}},
		{"colliding outdir names", []string{"render", "--outdir", "out", "a/x.html", "b/x.html"}},
	}
	for _, tt := range usage {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockBackend{}
			env, _, stderr := testEnv(mock, "x")
			code := runMain(context.Background(), append([]string{"html2uri"}, tt.args...), env)

			if code != ExitUsage {
				t.Errorf("exit code = %d, want %d; stderr: %s", code, ExitUsage, stderr.String())
			}
			if mock.callCount() != 0 {
				t.Error("renderer should not be called on usage errors")
			}
		})
	}
}
