package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ifp/vicidial-cli/internal/debug"
	"github.com/ifp/vicidial-cli/internal/dryrun"
	"github.com/ifp/vicidial-cli/internal/filter"
	"github.com/ifp/vicidial-cli/internal/iocontext"
	"github.com/ifp/vicidial-cli/internal/outfmt"
	"github.com/ifp/vicidial-cli/internal/resolve"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output    string
	LogFormat string
	Debug     bool
	DryRun    bool
	Quiet     bool
	Silent    bool
	Query     string
	JQ        string
	Compact   bool
	Timeout   time.Duration
	Profile   string
	Strict    bool
}

// flags holds the global command flags. It is reset at the start of every
// Execute() call; tests rely on that for clean state.
var flags = newRootFlags()

func newRootFlags() rootFlags {
	return rootFlags{
		Output:    defaultOutput(),
		LogFormat: string(debug.LogText),
	}
}

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv("VICIDIAL_OUTPUT"))
	if value != "" {
		return value
	}
	return "text"
}

// userEnvPath is the optional dotenv file loaded before flags are parsed.
var userEnvPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vicidial", ".env")
}

// loadUserEnv loads ~/.vicidial/.env when it exists. Variables already set
// in the environment are not overwritten.
func loadUserEnv() {
	path := userEnvPath()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Runs before the flag reset so that VICIDIAL_OUTPUT from the file
	// reaches the defaults.
	loadUserEnv()
	flags = newRootFlags()

	root := &cobra.Command{
		Use:                "vicidial",
		Short:              "CLI for the VICIdial non-agent API",
		Long:               "Build, preview and send VICIdial non-agent API requests (add_lead and friends) from the command line.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			query := getJQQuery()
			if query != "" {
				if _, err := filter.Compile(query); err != nil {
					return err
				}
				if flagOrAliasChanged(cmd, "output") && flags.Output == "text" {
					return fmt.Errorf("--jq/--query require --output json or jsonl")
				}
				if flags.Output == "text" {
					flags.Output = "json"
				}
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if query != "" {
				ctx = outfmt.WithQuery(ctx, query)
			}

			ioStreams := iocontext.DefaultIO()
			if flags.Silent || flags.Quiet {
				ioStreams.ErrOut = io.Discard
			}
			if flags.Quiet && mode == outfmt.Text {
				ioStreams.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			format, err := debug.ParseLogFormat(flags.LogFormat)
			if err != nil {
				return err
			}
			debug.SetupLogger(flags.Debug, format, ioStreams.ErrOut)
			ctx = debug.WithDebug(ctx, flags.Debug)

			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be positive")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|ndjson (env VICIDIAL_OUTPUT)")
	root.PersistentFlags().StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	root.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Alias for --query")
	root.PersistentFlags().BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging (password is always redacted)")
	root.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Debug log format: text|json")
	root.PersistentFlags().BoolVar(&flags.DryRun, "dry-run", false, "Compile and print the request without sending it")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	root.PersistentFlags().BoolVar(&flags.Silent, "silent", false, "Suppress non-error output to stderr")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "Connection timeout (e.g. 20s; default 15s, env VICIDIAL_TIMEOUT)")
	root.PersistentFlags().StringVarP(&flags.Profile, "profile", "p", "", "Credential profile to use (env VICIDIAL_PROFILE)")
	root.PersistentFlags().BoolVar(&flags.Strict, "strict", false, "Validate required field formats before sending")

	flagAlias(root.PersistentFlags(), "output", "out")
	flagAlias(root.PersistentFlags(), "compact-json", "cj")
	flagAlias(root.PersistentFlags(), "dry-run", "dr")
	flagAlias(root.PersistentFlags(), "debug", "dbg")
	flagAlias(root.PersistentFlags(), "timeout", "to")

	root.AddCommand(newAddLeadCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newURICmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newActionsCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd)) //nolint:errcheck
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestions := resolve.Suggest(unknown, names, 1); len(suggestions) > 0 {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestions[0])
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			cmd := targetCmd
			if cmd == nil {
				cmd = root
			}
			var flagNames []string
			collect := func(f *pflag.Flag) {
				if !f.Hidden {
					flagNames = append(flagNames, "--"+f.Name)
				}
			}
			cmd.Flags().VisitAll(collect)
			cmd.InheritedFlags().VisitAll(collect)

			helpCmd := strings.TrimSpace(cmd.CommandPath()) + " --help"
			if suggestions := resolve.Suggest(unknown, flagNames, 1); len(suggestions) > 0 {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestions[0], helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
