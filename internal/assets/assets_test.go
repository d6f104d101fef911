package assets

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "badge", false},
		{"hyphen", "my-style", false},
		{"underscore", "my_style", false},
		{"digits and case", "Style123", false},
		{"empty", "", true},
		{"forward slash", "path/to/style", true},
		{"backslash", `path\to\style`, true},
		{"traversal", "..", true},
		{"extension", "style.css", true},
		{"space", "my style", true},
		{"non-ascii", "stylé", true},
		{"too long", strings.Repeat("a", maxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) error = %v, want ErrInvalidAssetName", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAssetName(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestLoadStyle_Embedded(t *testing.T) {
	t.Parallel()

	for _, name := range []string{DefaultStyle, "badge", "card", "mono"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			css, err := LoadStyle(name)
			if err != nil {
				t.Fatalf("LoadStyle(%q) error = %v", name, err)
			}
			if !strings.Contains(css, "{") {
				t.Errorf("LoadStyle(%q) returned no rules", name)
			}
		})
	}

	if _, err := LoadStyle("nonexistent-xyz"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
	}
	if _, err := LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
	}
}

func TestStyleNames(t *testing.T) {
	t.Parallel()

	names := StyleNames()
	want := []string{"badge", "card", "default", "mono"}
	if !slices.Equal(names, want) {
		t.Errorf("StyleNames() = %v, want %v", names, want)
	}
}

func writeStyle(t *testing.T, dir, name, css string) {
	t.Helper()
	stylesDir := filepath.Join(dir, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		t.Fatalf("failed to create styles dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stylesDir, name+".css"), []byte(css), 0o644); err != nil {
		t.Fatalf("failed to write style: %v", err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	if _, err := NewFilesystemLoader(t.TempDir()); err != nil {
		t.Errorf("NewFilesystemLoader() on temp dir error = %v", err)
	}

	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	for _, path := range []string{"", "/nonexistent/path/abc123xyz", filePath} {
		if _, err := NewFilesystemLoader(path); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", path, err)
		}
	}
}

func TestFilesystemLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStyle(t, dir, "brand", "b { color: teal }")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	css, err := loader.LoadStyle("brand")
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}
	if css != "b { color: teal }" {
		t.Errorf("LoadStyle() = %q", css)
	}

	if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want ErrStyleNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.css")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o755); err != nil {
		t.Fatalf("failed to create styles dir: %v", err)
	}
	if err := os.Symlink(secret, filepath.Join(dir, "styles", "leak.css")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}
}

func TestStyleResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewStyleResolver("")
		if err != nil {
			t.Fatalf("NewStyleResolver() error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
		if _, err := r.LoadStyle(DefaultStyle); err != nil {
			t.Errorf("LoadStyle() error = %v", err)
		}
	})

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeStyle(t, dir, "badge", "custom-badge")

		r, err := NewStyleResolver(dir)
		if err != nil {
			t.Fatalf("NewStyleResolver() error = %v", err)
		}
		css, err := r.LoadStyle("badge")
		if err != nil || css != "custom-badge" {
			t.Errorf("LoadStyle(badge) = %q, %v, want custom", css, err)
		}
	})

	t.Run("falls back to embedded", func(t *testing.T) {
		t.Parallel()

		r, err := NewStyleResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewStyleResolver() error = %v", err)
		}
		embedded, _ := LoadStyle("mono")
		css, err := r.LoadStyle("mono")
		if err != nil || css != embedded {
			t.Errorf("LoadStyle(mono) = %q, %v, want embedded", css, err)
		}
	})

	t.Run("validation errors do not fall back", func(t *testing.T) {
		t.Parallel()

		r, err := NewStyleResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewStyleResolver() error = %v", err)
		}
		if _, err := r.LoadStyle("a/b"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("invalid custom path", func(t *testing.T) {
		t.Parallel()

		if _, err := NewStyleResolver("/nonexistent/path/abc123xyz"); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewStyleResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}
