package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if !check {
				if isJSON(cmd) {
					return printJSON(cmd, map[string]string{"version": version})
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "vicidial-cli version %s\n", version)
				return nil
			}

			result, err := update.Check(cmd.Context(), version)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "vicidial-cli version %s\n", version)
			if result.UpdateAvailable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s\n  %s\n", result.LatestVersion, result.UpdateURL)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Latest release: %s\n", result.LatestVersion)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	return cmd
}
