package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2uri <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render HTML or Markdown to PNG data URIs")
	fmt.Fprintln(w, "  serve      Serve renders over HTTP")
	fmt.Fprintln(w, "  doctor     Check Chrome and environment setup")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2uri help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2uri render [flags] <file...|->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render each input and print its PNG data URI, one per line.")
	fmt.Fprintln(w, "Use - to read from stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Write a PNG file (single input)")
	fmt.Fprintln(w, "      --outdir <dir>        Write one PNG per input")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "      --width <n>           Surface width in pixels (0 = 64)")
	fmt.Fprintln(w, "      --height <n>          Surface height in pixels (0 = 64)")
	fmt.Fprintln(w, "      --document            Content is a JSON-encoded markup string")
	fmt.Fprintln(w, "      --font-family <s>     Font family")
	fmt.Fprintln(w, "      --font-size <f>       Font size in pixels")
	fmt.Fprintln(w, "      --font-weight <s>     Font weight")
	fmt.Fprintln(w, "      --font-color <s>      Font color")
	fmt.Fprintln(w, "      --settings <json>     Full settings, e.g. {\"width\":100,\"isDocument\":false}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "      --from <s>            Input format: html, markdown")
	fmt.Fprintln(w, "      --style <name|path>   Style preset or .css file")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with styles/{name}.css overrides")
	fmt.Fprintln(w)
	printBrowserUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2uri serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve renders over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  POST /render  {\"settings\":{...},\"content\":\"...\"} -> {\"uri\":\"...\",\"cached\":false}")
	fmt.Fprintln(w, "  GET  /healthz")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default :8080)")
	fmt.Fprintln(w, "      --style <name|path>   Style applied when a request sets no css")
	fmt.Fprintln(w)
	printBrowserUsage(w)
}

// printBrowserUsage prints the flags shared by render and serve.
func printBrowserUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browser instances (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-render timeout (default 30s)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary")
	fmt.Fprintln(w, "      --no-sandbox          Disable the Chrome sandbox")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: html2uri doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, environment and cache setup.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2uri version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2uri help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
