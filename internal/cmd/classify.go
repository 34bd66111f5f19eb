package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
	"github.com/ifp/vicidial-cli/internal/iocontext"
)

// maxClassifyInput bounds a body read from stdin.
const maxClassifyInput = 1 << 20

func newClassifyCmd() *cobra.Command {
	var exitStatus bool

	cmd := &cobra.Command{
		Use:   "classify [body]",
		Short: "Classify a response body as success, error or unknown",
		Long: strings.TrimSpace(`
Classify a non-agent API response body offline. The body is read from the
argument, or from stdin when no argument is given.

With --exit-status the command exits 9 for ERROR: bodies and 10 for
unrecognized ones, like a real call would.
`),
		Example: strings.TrimSpace(`
  vicidial classify "SUCCESS: add_lead LEAD HAS BEEN ADDED"
  curl -s "$URI" | vicidial classify --exit-status
`),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			var body []byte
			if len(args) == 1 {
				body = []byte(args[0])
			} else {
				data, err := iocontext.GetIO(cmd.Context()).ReadInput(maxClassifyInput)
				if err != nil {
					return err
				}
				body = data
			}

			outcome := api.Classify(body)
			if isJSON(cmd) {
				if err := printJSON(cmd, map[string]any{
					"outcome": outcome,
					"success": outcome == api.OutcomeSuccess,
					"body":    string(body),
				}); err != nil {
					return err
				}
			} else {
				printIfNotQuiet(cmd, "%s\n", outcome)
			}

			if !exitStatus {
				return nil
			}
			return api.CallOutcome{Outcome: outcome, Body: strings.TrimRight(string(body), "\r\n")}.Err()
		}),
	}

	cmd.Flags().BoolVar(&exitStatus, "exit-status", false, "Exit non-zero unless the body is a success")
	return cmd
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List supported API functions and their required fields",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			actions := api.SupportedActions()

			if isJSON(cmd) {
				type field struct {
					Name string `json:"name"`
					Hint string `json:"hint"`
				}
				out := make([]map[string]any, 0, len(actions))
				for _, a := range actions {
					var fields []field
					for _, f := range a.RequiredFields() {
						fields = append(fields, field{Name: f.Name, Hint: f.Hint})
					}
					out = append(out, map[string]any{"action": a, "required": fields})
				}
				return printJSON(cmd, out)
			}

			ioStreams := iocontext.GetIO(cmd.Context())
			for _, a := range actions {
				_, _ = fmt.Fprintf(ioStreams.Out, "%s\n", a)
				for _, f := range a.RequiredFields() {
					_, _ = fmt.Fprintf(ioStreams.Out, "  %-14s %s\n", f.Name, f.Hint)
				}
			}
			return nil
		}),
	}
}
