package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	ArgValues   []string // fixed positional argument values
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"backends":     {Values: []string{"chrome", "cloud"}},
	"stamp-format": {Values: []string{"iso", "european", "us", "long"}},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},
	"report": {FileGlob: "*.json"},

	// Directory flags
	"output": {IsDir: true},
}

// buildConvertFlagSet creates a FlagSet with all convert command flags.
// This reuses the same flag registration as parseConvertFlags.
func buildConvertFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addRenderFlags(fs, &f.render)
	addBatchFlags(fs, &f.batch)

	return fs
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	convertFlags := extractFlagsFromFlagSet(buildConvertFlagSet())

	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert documents to PDF",
			Flags:       convertFlags,
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown,*.txt,*.text,*.html,*.htm",
		},
		{
			Name:  "doctor",
			Desc:  "Check the environment for problems",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output results as JSON"}},
		},
		{
			Name:      "completion",
			Desc:      "Generate shell completion script",
			ArgValues: []string{"bash", "zsh", "fish", "powershell"},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name:      "help",
			Desc:      "Show help for a command",
			ArgValues: []string{"convert", "doctor", "completion", "version", "help"},
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(doc2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(doc2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    doc2pdf completion fish > ~/.config/fish/completions/doc2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    doc2pdf completion powershell | Out-String | Invoke-Expression")
}

// globExtensions splits "*.md,*.markdown" into ["md", "markdown"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		g = strings.TrimPrefix(strings.TrimSpace(g), "*.")
		if g != "" {
			exts = append(exts, g)
		}
	}
	return exts
}

// flagWords lists every flag spelling for a word-list completion.
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// flagPattern builds the case pattern matching a flag's spellings.
func flagPattern(f flagDef) string {
	if f.Short != "" {
		return fmt.Sprintf("--%s|-%s", f.Long, f.Short)
	}
	return "--" + f.Long
}

// takesValue reports whether the flag consumes the next word.
func takesValue(f flagDef) bool {
	return f.Type != flagBool
}

// generateBash writes the bash completion script.
func generateBash(w io.Writer) error {
	commands := getCommands()

	var names []string
	for _, c := range commands {
		names = append(names, c.Name)
	}

	var b strings.Builder
	b.WriteString("# bash completion for doc2pdf\n")
	b.WriteString("_doc2pdf() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")

	fmt.Fprintf(&b, "    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)
		writeBashCommand(&b, cmd)
		b.WriteString("        ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _doc2pdf doc2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBashCommand(b *strings.Builder, cmd commandDef) {
	hasValueFlags := false
	for _, f := range cmd.Flags {
		if takesValue(f) {
			hasValueFlags = true
			break
		}
	}

	// Complete the value of the preceding flag.
	if hasValueFlags {
		b.WriteString("        case \"$prev\" in\n")
		for _, f := range cmd.Flags {
			if !takesValue(f) {
				continue
			}
			fmt.Fprintf(b, "        %s)\n", flagPattern(f))
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, "            COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(b, "            COMPREPLY=( %s )\n", bashFileCompgen(f.FileGlob))
			case flagDir:
				b.WriteString("            COMPREPLY=( $(compgen -d -- \"$cur\") )\n")
			default:
				b.WriteString("            COMPREPLY=()\n")
			}
			b.WriteString("            return\n")
			b.WriteString("            ;;\n")
		}
		b.WriteString("        esac\n")
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(b, "            COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(flagWords(cmd.Flags), " "))
		b.WriteString("            return\n")
		b.WriteString("        fi\n")
	}

	switch {
	case len(cmd.ArgValues) > 0:
		fmt.Fprintf(b, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(cmd.ArgValues, " "))
	case cmd.TakesFiles:
		fmt.Fprintf(b, "        COMPREPLY=( %s )\n", bashFileCompgen(cmd.FilePattern))
	}
}

// bashFileCompgen completes directories plus files matching the glob.
// One compgen per extension avoids depending on extglob.
func bashFileCompgen(glob string) string {
	parts := []string{`$(compgen -d -- "$cur")`}
	for _, ext := range globExtensions(glob) {
		parts = append(parts, fmt.Sprintf(`$(compgen -f -X '!*.%s' -- "$cur")`, ext))
	}
	return strings.Join(parts, " ")
}

// generateZsh writes the zsh completion script.
func generateZsh(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# zsh completion for doc2pdf\n")
	b.WriteString("_doc2pdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, c.Desc)
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "    %s)\n", cmd.Name)
		writeZshCommand(&b, cmd)
		b.WriteString("        ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _doc2pdf doc2pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeZshCommand(b *strings.Builder, cmd commandDef) {
	hasValueFlags := false
	for _, f := range cmd.Flags {
		if takesValue(f) {
			hasValueFlags = true
			break
		}
	}

	if hasValueFlags {
		b.WriteString("        case \"${words[CURRENT-1]}\" in\n")
		for _, f := range cmd.Flags {
			if !takesValue(f) {
				continue
			}
			fmt.Fprintf(b, "        %s)\n", flagPattern(f))
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, "            _values '%s' %s\n", f.Long, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(b, "            _files -g %q\n", zshGlob(f.FileGlob))
			case flagDir:
				b.WriteString("            _files -/\n")
			default:
				fmt.Fprintf(b, "            _message %q\n", f.Desc)
			}
			b.WriteString("            return\n")
			b.WriteString("            ;;\n")
		}
		b.WriteString("        esac\n")
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("        if [[ \"${words[CURRENT]}\" == -* ]]; then\n")
		fmt.Fprintf(b, "            compadd -- %s\n", strings.Join(flagWords(cmd.Flags), " "))
		b.WriteString("            return\n")
		b.WriteString("        fi\n")
	}

	switch {
	case len(cmd.ArgValues) > 0:
		fmt.Fprintf(b, "        _values 'argument' %s\n", strings.Join(cmd.ArgValues, " "))
	case cmd.TakesFiles:
		fmt.Fprintf(b, "        _files -g %q\n", zshGlob(cmd.FilePattern))
	}
}

func zshGlob(glob string) string {
	return "*.(" + strings.Join(globExtensions(glob), "|") + ")"
}

// generateFish writes the fish completion script.
func generateFish(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder
	b.WriteString("# fish completion for doc2pdf\n")
	b.WriteString("complete -c doc2pdf -f\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "complete -c doc2pdf -n __fish_use_subcommand -a %s -d %q\n", c.Name, c.Desc)
	}
	b.WriteString("\n")

	for _, cmd := range commands {
		cond := "__fish_seen_subcommand_from " + cmd.Name
		for _, f := range cmd.Flags {
			fmt.Fprintf(&b, "complete -c doc2pdf -n %q", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s", f.Long)
			switch f.Type {
			case flagBool:
				// no argument
			case flagEnum:
				fmt.Fprintf(&b, " -xa %q", strings.Join(f.Values, " "))
			case flagFile:
				b.WriteString(" -rF")
			case flagDir:
				b.WriteString(" -xa \"(__fish_complete_directories)\"")
			default:
				b.WriteString(" -x")
			}
			fmt.Fprintf(&b, " -d %q\n", f.Desc)
		}
		if len(cmd.ArgValues) > 0 {
			fmt.Fprintf(&b, "complete -c doc2pdf -n %q -a %q\n", cond, strings.Join(cmd.ArgValues, " "))
		}
		if cmd.TakesFiles {
			fmt.Fprintf(&b, "complete -c doc2pdf -n %q -F\n", cond)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// generatePowerShell writes the PowerShell completion script.
func generatePowerShell(w io.Writer) error {
	commands := getCommands()

	var names []string
	for _, c := range commands {
		names = append(names, c.Name)
	}

	var b strings.Builder
	b.WriteString("# PowerShell completion for doc2pdf\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName doc2pdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $words = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $completions = @()\n\n")
	b.WriteString("    if ($words.Count -lt 2 -or ($words.Count -eq 2 -and $wordToComplete)) {\n")
	fmt.Fprintf(&b, "        $completions = @(%s)\n", psList(names))
	b.WriteString("    } else {\n")
	b.WriteString("        switch ($words[1]) {\n")
	for _, cmd := range commands {
		vals := append(flagWords(cmd.Flags), cmd.ArgValues...)
		fmt.Fprintf(&b, "            '%s' { $completions = @(%s) }\n", cmd.Name, psList(vals))
	}
	b.WriteString("        }\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $completions | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
