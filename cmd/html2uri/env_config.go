package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-html2uri/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // HTML2URI_CONFIG: config file name or path
	Timeout    time.Duration // HTML2URI_TIMEOUT: per-render timeout
	Workers    int           // HTML2URI_WORKERS: parallel browser instances
	RedisAddr  string        // HTML2URI_REDIS_ADDR: shared cache address
	Addr       string        // HTML2URI_ADDR: serve listen address
}

// knownEnvVars lists valid HTML2URI_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2URI_CONFIG":     true,
	"HTML2URI_TIMEOUT":    true,
	"HTML2URI_WORKERS":    true,
	"HTML2URI_REDIS_ADDR": true,
	"HTML2URI_ADDR":       true,
	"HTML2URI_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable or non-positive timeout and worker values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HTML2URI_CONFIG"),
		RedisAddr:  os.Getenv("HTML2URI_REDIS_ADDR"),
		Addr:       os.Getenv("HTML2URI_ADDR"),
	}

	if timeout := os.Getenv("HTML2URI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("HTML2URI_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized HTML2URI_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTML2URI_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the config file.
// CLI flags are applied afterwards, giving: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
	if env.RedisAddr != "" {
		cfg.Cache.Redis.Addr = env.RedisAddr
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
}
