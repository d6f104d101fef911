package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2uri/internal/assets"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagValue flagType = iota // free-form value
	flagBool
	flagEnum // has predefined values
	flagFile // file path
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // o (empty if none)
	Type   flagType // completion type
	Desc   string   // help text
	Values []string // for enum flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool
}

// flagCompletionMeta maps flag names to completion hints.
// Names, shorthands, types and descriptions come from the FlagSets.
var flagCompletionMeta = map[string]flagType{
	"config":      flagFile,
	"output":      flagFile,
	"browser-bin": flagFile,
	"outdir":      flagDir,
	"asset-path":  flagDir,
}

// flagEnumValues lists predefined values for enum flags.
var flagEnumValues = map[string][]string{
	"from":  {"html", "markdown"},
	"style": nil, // filled with style presets at generation time
}

// extractFlags builds flag definitions from a FlagSet, sorted by name.
func extractFlags(fs *flag.FlagSet, styles []string) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}
		if t, ok := flagCompletionMeta[f.Name]; ok {
			fd.Type = t
		}
		if values, ok := flagEnumValues[f.Name]; ok {
			if f.Name == "style" {
				values = styles
			}
			fd.Type = flagEnum
			fd.Values = values
		}
		flags = append(flags, fd)
	})

	sort.Slice(flags, func(i, j int) bool { return flags[i].Long < flags[j].Long })
	return flags
}

// getCommands returns the command registry for completion.
func getCommands(styles []string) []commandDef {
	renderFS, _ := newRenderFlagSet(io.Discard)
	serveFS, _ := newServeFlagSet(io.Discard)

	return []commandDef{
		{Name: "render", Desc: "Render HTML or Markdown to PNG data URIs", Flags: extractFlags(renderFS, styles), TakesFiles: true},
		{Name: "serve", Desc: "Serve renders over HTTP", Flags: extractFlags(serveFS, styles)},
		{Name: "doctor", Desc: "Check Chrome and environment setup", Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "print results as JSON"}}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell, styles []string) error {
	cmds := getCommands(styles)
	switch shell {
	case ShellBash:
		return generateBash(w, cmds)
	case ShellZsh:
		// zsh runs the bash completion through bashcompinit.
		if _, err := fmt.Fprint(w, "#compdef html2uri\n\nautoload -U +X bashcompinit && bashcompinit\n\n"); err != nil {
			return err
		}
		return generateBash(w, cmds)
	case ShellFish:
		return generateFish(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	b.WriteString("# bash completion for html2uri\n")
	b.WriteString("_html2uri() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if c.Name == "help" || c.Name == "completion" {
			words := strings.Join(names, " ")
			if c.Name == "completion" {
				words = "bash zsh fish"
			}
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n        ;;\n", words)
			continue
		}

		var valueCases []string
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
			var reply string
			switch f.Type {
			case flagEnum:
				reply = fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"${cur}\"))", strings.Join(f.Values, " "))
			case flagFile:
				reply = "COMPREPLY=($(compgen -f -- \"${cur}\"))"
			case flagDir:
				reply = "COMPREPLY=($(compgen -d -- \"${cur}\"))"
			case flagValue:
				reply = "COMPREPLY=()"
			default:
				continue
			}
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			valueCases = append(valueCases, fmt.Sprintf("        %s) %s; return ;;\n", pattern, reply))
		}

		if len(valueCases) > 0 {
			b.WriteString("        case \"${prev}\" in\n")
			for _, vc := range valueCases {
				b.WriteString("    " + vc)
			}
			b.WriteString("        esac\n")
		}
		fallback := "COMPREPLY=()"
		if c.TakesFiles {
			fallback = "COMPREPLY=($(compgen -f -- \"${cur}\"))"
		}
		fmt.Fprintf(&b, "        if [[ \"${cur}\" == -* ]]; then\n            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n        else\n            %s\n        fi\n        ;;\n",
			strings.Join(words, " "), fallback)
	}

	b.WriteString("    esac\n}\n\n")
	b.WriteString("complete -F _html2uri html2uri\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# fish completion for html2uri\n")
	b.WriteString("complete -c html2uri -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c html2uri -n __fish_use_subcommand -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.Name)
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c html2uri -n %s -F\n", cond)
		}
		if c.Name == "completion" {
			fmt.Fprintf(&b, "complete -c html2uri -n %s -a 'bash zsh fish'\n", cond)
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c html2uri -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += " -x -a " + fishQuote(strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagValue:
				line += " -x"
			}
			b.WriteString(line + " -d " + fishQuote(f.Desc) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`) + "'"
}

// runCompletionCmd handles the completion command.
func runCompletionCmd(_ context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]), assets.StyleNames())
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2uri completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells: bash, zsh, fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(html2uri completion bash)\"     # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(html2uri completion zsh)\"      # in ~/.zshrc, after compinit")
	fmt.Fprintln(w, "  Fish:  html2uri completion fish > ~/.config/fish/completions/html2uri.fish")
}
