// Package hints suggests a next step for the failures users hit most when
// rendering: Chrome not starting, slow pages and malformed input. Every
// hint starts with "\n  hint: " so it can be appended to an error message.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-html2uri/internal/fileutil"
)

const prefix = "\n  hint: "

// IsInContainer reports whether the process runs inside a Docker or Podman
// container. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv") || fileutil.FileExists("/run/.containerenv")
}

// ciVars are set by the CI runners we know about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"}

// InCI reports whether a known CI environment variable is set.
func InCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect explains how to get Chrome running for the rasterizer.
func ForBrowserConnect() string {
	steps := make([]string, 0, 3)
	if os.Getenv("ROD_NO_SANDBOX") != "1" && (InCI() || IsInContainer()) {
		steps = append(steps, "Chrome cannot sandbox here, pass --no-sandbox or export ROD_NO_SANDBOX=1")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		steps = append(steps, "point --browser-bin or ROD_BROWSER_BIN at an installed Chrome to skip the Chromium download")
	}
	steps = append(steps, "'html2uri doctor' shows which browser was found")
	return join(steps...)
}

// ForTimeout is attached to renders that ran out of time.
func ForTimeout() string {
	return join("remote fonts and images delay the image decode, raise --timeout or HTML2URI_TIMEOUT")
}

// ForSettings shows a minimal valid settings payload.
func ForSettings() string {
	return join(`settings must carry "isDocument", e.g. {"width":100,"height":50,"isDocument":false}`)
}

// ForDocument is attached to document-mode content that is not a JSON string.
func ForDocument() string {
	return join(`--document expects the markup as one JSON string, e.g. "\"<p>hi</p>\""`)
}

// ForConfigNotFound names the user config location among searchedPaths,
// if any, as a place to create the file.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "pass --config path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-html2uri") {
			return join(hint + ", or create " + p)
		}
	}
	return join(hint)
}

// ForOutputDirectory is attached to PNG write failures.
func ForOutputDirectory() string {
	return join("the PNG could not be written, check that --outdir or the --output parent is writable")
}

// ForStyleNotFound lists the style presets that do exist.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return join("known styles: " + strings.Join(available, ", "))
}

// ForRedis is attached to cache setup failures.
func ForRedis(addr string) string {
	return join("no Redis answered at " + addr + ", fix cache.redis.addr or unset HTML2URI_REDIS_ADDR to cache in memory")
}

// join renders steps as a single hint line. No steps means no hint.
func join(steps ...string) string {
	if len(steps) == 0 || (len(steps) == 1 && steps[0] == "") {
		return ""
	}
	return prefix + strings.Join(steps, "; ")
}
