package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags holds rasterizer flags shared by render and serve.
type browserFlags struct {
	workers   int
	timeout   string
	bin       string
	noSandbox bool
}

// settingsFlags holds per-render settings flags. Zero values mean "not set".
type settingsFlags struct {
	width      int
	height     int
	document   bool
	fontFamily string
	fontSize   float64
	fontWeight string
	fontColor  string
	json       string // full settings payload, same shape as data-settings
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	browser   browserFlags
	settings  settingsFlags
	style     string
	assetPath string
	from      string
	output    string
	outdir    string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	browser browserFlags
	addr    string
	style   string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addBrowserFlags adds rasterizer flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browser instances (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-render timeout, e.g. 30s or 2m")
	fs.StringVar(&f.bin, "browser-bin", "", "Chrome/Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
}

// addSettingsFlags adds render settings flags to a FlagSet.
func addSettingsFlags(fs *flag.FlagSet, f *settingsFlags) {
	fs.IntVar(&f.width, "width", 0, "surface width in pixels (0 = 64)")
	fs.IntVar(&f.height, "height", 0, "surface height in pixels (0 = 64)")
	fs.BoolVar(&f.document, "document", false, "content is a JSON-encoded markup string")
	fs.StringVar(&f.fontFamily, "font-family", "", "font family")
	fs.Float64Var(&f.fontSize, "font-size", 0, "font size in pixels")
	fs.StringVar(&f.fontWeight, "font-weight", "", "font weight")
	fs.StringVar(&f.fontColor, "font-color", "", "font color")
	fs.StringVar(&f.json, "settings", "", `settings JSON, e.g. {"width":100,"height":50,"isDocument":false}`)
}

// newRenderFlagSet registers the render command flags.
func newRenderFlagSet(w io.Writer) (*flag.FlagSet, *renderFlags) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "write a PNG file instead of printing the data URI")
	fs.StringVar(&f.outdir, "outdir", "", "write one PNG per input into this directory")
	fs.StringVar(&f.style, "style", "", "style preset name or .css file")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with styles/{name}.css overrides")
	fs.StringVar(&f.from, "from", "", "input format: html or markdown")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addSettingsFlags(fs, &f.settings)

	fs.Usage = func() { printRenderUsage(w) }
	return fs, f
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	fs, f := newRenderFlagSet(w)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// newServeFlagSet registers the serve command flags.
func newServeFlagSet(w io.Writer) (*flag.FlagSet, *serveFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.StringVar(&f.style, "style", "", "style preset name or .css file applied when a request sets no css")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)

	fs.Usage = func() { printServeUsage(w) }
	return fs, f
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	fs, f := newServeFlagSet(w)
	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}

// usageError marks flag parse errors as usage errors. Help requests pass through.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
