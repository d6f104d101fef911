package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConverter_ToXHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "**bold** and *italic*",
			contains: []string{"<p><strong>bold</strong> and <em>italic</em></p>"},
			excludes: []string{"<html", "<body"},
		},
		{
			name:     "heading",
			input:    "# Title",
			contains: []string{"<h1>Title</h1>"},
		},
		{
			name:     "xhtml void elements",
			input:    "a\n\n---\n\nb",
			contains: []string{"<hr />"},
		},
		{
			name:     "gfm strikethrough",
			input:    "~~gone~~",
			contains: []string{"<del>gone</del>"},
		},
		{
			name:     "gfm table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "raw html dropped",
			input:    "<script>alert(1)</script>",
			contains: []string{"<!-- raw HTML omitted -->"},
			excludes: []string{"<script>"},
		},
		{
			name:     "inline highlighting",
			input:    "```go\nfunc main() {}\n```",
			contains: []string{"<pre", "style=\""},
			excludes: []string{`class="chroma"`},
		},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.ToXHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToXHTML() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToXHTML() missing %q in:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToXHTML() should not contain %q:\n%s", bad, got)
				}
			}
		})
	}
}

func TestConverter_HardWraps(t *testing.T) {
	t.Parallel()

	soft, err := NewConverter().ToXHTML(context.Background(), "one\ntwo")
	if err != nil {
		t.Fatalf("ToXHTML() error = %v", err)
	}
	if strings.Contains(soft, "<br />") {
		t.Errorf("soft line break rendered as <br />: %q", soft)
	}

	hard, err := NewConverter(WithHardWraps()).ToXHTML(context.Background(), "one\ntwo")
	if err != nil {
		t.Fatalf("ToXHTML() error = %v", err)
	}
	if !strings.Contains(hard, "one<br />") {
		t.Errorf("WithHardWraps() should render <br />, got %q", hard)
	}
}

func TestConverter_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter().ToXHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToXHTML() error = %v, want context.Canceled", err)
	}
}
