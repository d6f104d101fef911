package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-html2uri"
	"github.com/alnah/go-html2uri/internal/config"
	"github.com/alnah/go-html2uri/internal/fileutil"
	"github.com/alnah/go-html2uri/internal/markdown"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinName is the positional argument that reads content from stdin.
const stdinName = "-"

// renderInput is one input to render and where its PNG goes ("" = print URI).
type renderInput struct {
	Path   string
	Output string
}

// renderResult holds the outcome of a single render.
type renderResult struct {
	Input    string
	Output   string
	URI      string
	Cached   bool
	Err      error
	Duration time.Duration
}

// renderParams groups parameters shared across the batch.
type renderParams struct {
	settings html2uri.Settings
	md       *markdown.Converter // nil for HTML input
	stdin    io.Reader
}

// runRenderCmd renders each input and prints its data URI or writes a PNG.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeRenderFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	configureMaxProcs(logger)

	inputs, err := planInputs(positional, flags.output, flags.outdir)
	if err != nil {
		return err
	}

	settings, err := buildSettings(&flags.settings, cfg.Render)
	if err != nil {
		return err
	}
	css, err := resolveStyle(cfg.Render.Style, cfg.Render.AssetPath)
	if err != nil {
		return err
	}
	if css != "" {
		settings.CSS = css
	}

	params := &renderParams{settings: settings, stdin: env.Stdin}
	if cfg.Render.From == config.FromMarkdown {
		params.md = markdown.NewConverter(markdown.WithHighlightStyle(cfg.Render.HighlightStyle))
	}

	cache, closeCache, err := buildCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	opts, err := rendererOptions(cfg, cache, logger)
	if err != nil {
		return err
	}

	workers := min(html2uri.ResolvePoolSize(cfg.Browser.Workers), len(inputs))
	logger.Debug("starting render", "inputs", len(inputs), "workers", workers)

	backend := env.NewBackend(workers, opts...)
	defer func() { _ = backend.Close() }()

	results := renderBatch(ctx, backend, workers, inputs, params)
	return reportResults(results, flags.common.quiet, flags.common.verbose, env)
}

// planInputs pairs every positional argument with its output path.
func planInputs(args []string, output, outdir string) ([]renderInput, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: pass files or - for stdin", ErrNoInput)
	}
	if output != "" && (len(args) > 1 || outdir != "") {
		return nil, fmt.Errorf("%w: --output needs exactly one input; use --outdir for several", ErrOutputConflict)
	}

	inputs := make([]renderInput, len(args))
	seenStdin := false
	outputs := make(map[string]string, len(args)) // output -> input
	for i, path := range args {
		if path == stdinName {
			if seenStdin {
				return nil, fmt.Errorf("%w: stdin (-) can be read only once", ErrUsage)
			}
			seenStdin = true
		}

		in := renderInput{Path: path, Output: output}
		if outdir != "" {
			base := filepath.Base(path)
			if path == stdinName {
				base = "stdin"
			}
			in.Output = filepath.Join(outdir, fileutil.ReplaceExt(base, ".png"))
			if prev, ok := outputs[in.Output]; ok {
				return nil, fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, path, in.Output)
			}
			outputs[in.Output] = path
		}
		inputs[i] = in
	}
	return inputs, nil
}

// renderBatch renders inputs concurrently with a fixed number of workers.
// Results keep the order of inputs.
func renderBatch(ctx context.Context, r html2uri.ContentRenderer, workers int, inputs []renderInput, params *renderParams) []renderResult {
	if len(inputs) == 0 {
		return nil
	}
	workers = max(1, min(workers, len(inputs)))

	results := make([]renderResult, len(inputs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(inputs))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = renderResult{Input: inputs[idx].Path, Err: err}
					continue
				}
				results[idx] = renderOne(ctx, r, inputs[idx], params)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderOne reads, prepares, renders and optionally writes a single input.
func renderOne(ctx context.Context, r html2uri.ContentRenderer, in renderInput, params *renderParams) renderResult {
	start := time.Now()
	result := renderResult{Input: in.Path, Output: in.Output}
	fail := func(err error) renderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := readInput(in.Path, params.stdin)
	if err != nil {
		return fail(err)
	}

	if params.md != nil {
		content, err = params.md.ToXHTML(ctx, content)
		if err != nil {
			return fail(err)
		}
		if params.settings.IsDocument {
			if content, err = encodeDocument(content); err != nil {
				return fail(err)
			}
		}
	}

	res, err := r.Render(ctx, params.settings, content)
	if err != nil {
		return fail(err)
	}
	result.URI = res.URI
	result.Cached = res.Cached

	if in.Output != "" {
		if err := writePNG(in.Output, res); err != nil {
			return fail(err)
		}
	}

	result.Duration = time.Since(start)
	return result
}

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided path
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

// writePNG decodes the result and writes it atomically to path.
func writePNG(path string, res *html2uri.Result) error {
	data, err := res.PNG()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// resultSummary holds the count of succeeded and failed renders.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []renderResult) resultSummary {
	var summary resultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// reportResults prints URIs to stdout, one per line in input order, and
// progress and failures to stderr. It returns ErrBatchFailed wrapping the
// first failure when any input failed.
func reportResults(results []renderResult, quiet, verbose bool, env *Environment) error {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Input, r.Err, hintFor(r.Err))
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if r.Output == "" {
			fmt.Fprintln(env.Stdout, r.URI)
		}
		if quiet {
			continue
		}
		switch {
		case verbose:
			fmt.Fprintf(env.Stderr, "%s -> %s (%v, cached=%t)\n", r.Input, displayOutput(r), r.Duration.Round(time.Millisecond), r.Cached)
		case r.Output != "":
			fmt.Fprintf(env.Stderr, "Created %s\n", r.Output)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if firstErr != nil {
		return fmt.Errorf("%w: %d of %d: %w", ErrBatchFailed, summary.Failed, len(results), firstErr)
	}
	return nil
}

// displayOutput names where a result went.
func displayOutput(r renderResult) string {
	if r.Output == "" {
		return "stdout"
	}
	return r.Output
}
