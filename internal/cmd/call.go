package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
)

// callResult is the JSON shape of a completed call.
type callResult struct {
	CallID     string      `json:"call_id"`
	Action     api.Action  `json:"action"`
	Outcome    api.Outcome `json:"outcome"`
	Success    bool        `json:"success"`
	Body       string      `json:"body"`
	DurationMS int64       `json:"duration_ms"`
	URI        string      `json:"uri"`
}

// runCall sends one request through a fully configured gateway and prints
// the outcome. Non-success outcomes are returned as *api.ResponseError so
// the exit code reflects them.
func runCall(cmd *cobra.Command, g *api.Gateway) error {
	preview, err := previewOf(g)
	if err != nil {
		return err
	}
	if done, err := maybeDryRun(cmd, preview); done {
		return err
	}

	if _, err := g.Invoke(cmd.Context()); err != nil {
		return err
	}
	outcome, err := g.LastOutcome()
	if err != nil {
		return err
	}

	if isJSON(cmd) {
		if err := printJSON(cmd, callResult{
			CallID:     outcome.CallID,
			Action:     outcome.Action,
			Outcome:    outcome.Outcome,
			Success:    outcome.Outcome == api.OutcomeSuccess,
			Body:       outcome.Body,
			DurationMS: outcome.Duration.Milliseconds(),
			URI:        preview.URI,
		}); err != nil {
			return err
		}
	} else if outcome.Outcome == api.OutcomeSuccess {
		printIfNotQuiet(cmd, "%s\n", strings.TrimRight(outcome.Body, "\r\n"))
	}
	return outcome.Err()
}

func newAddLeadCmd() *cobra.Command {
	var (
		conn        connectionFlags
		phoneNumber string
		phoneCode   string
		listID      string
		source      string
		rawParams   []string
	)

	cmd := &cobra.Command{
		Use:     "add-lead",
		Aliases: []string{"al"},
		Short:   "Add a lead to a list",
		Long: strings.TrimSpace(`
Add a lead through the add_lead function of the non-agent API.

phone_number, phone_code, list_id and source are required. Any other
add_lead field (first_name, vendor_lead_code, duplicate_check, ...) can be
passed with --param name=value, repeated as needed.
`),
		Example: strings.TrimSpace(`
  vicidial add-lead --phone-number 5551234567 --phone-code 1 --list-id 30000 --source crm
  vicidial add-lead --phone-number 5551234567 --phone-code 1 --list-id 30000 --source crm \
    --param first_name=Ada --param duplicate_check=DUPLIST
  vicidial add-lead ... --dry-run
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, err := conn.settings()
			if err != nil {
				return err
			}
			g := newGateway(s)
			if err := g.SetAction(api.ActionAddLead); err != nil {
				return err
			}

			var params []api.Param
			for _, p := range []api.Param{
				{Name: "phone_number", Value: phoneNumber},
				{Name: "phone_code", Value: phoneCode},
				{Name: "list_id", Value: listID},
				{Name: "source", Value: source},
			} {
				if p.Value != "" {
					params = append(params, p)
				}
			}
			extra, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := g.AddParams(append(params, extra...)...); err != nil {
				return err
			}
			return runCall(cmd, g)
		}),
	}

	conn.register(cmd)
	cmd.Flags().StringVar(&phoneNumber, "phone-number", "", "Phone number, 6-16 digits")
	cmd.Flags().StringVar(&phoneCode, "phone-code", "", "Country dialing code, 1-4 digits")
	cmd.Flags().StringVar(&listID, "list-id", "", "Target list id, 3-12 digits")
	cmd.Flags().StringVar(&source, "source", "", "What originated the call (max 20 characters)")
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "Extra parameter as name=value (repeatable)")
	flagAlias(cmd.Flags(), "phone-number", "phone")
	flagAlias(cmd.Flags(), "list-id", "list")

	return cmd
}

func newCallCmd() *cobra.Command {
	var (
		conn      connectionFlags
		rawParams []string
	)

	cmd := &cobra.Command{
		Use:   "call <action>",
		Short: "Call any supported non-agent API function",
		Example: strings.TrimSpace(`
  vicidial call add_lead --param phone_number=5551234567 --param phone_code=1 \
    --param list_id=30000 --param source=crm
`),
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, a := range api.SupportedActions() {
				names = append(names, a.String())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, err := conn.settings()
			if err != nil {
				return err
			}
			g := newGateway(s)
			if err := g.SetAction(api.Action(strings.TrimSpace(args[0]))); err != nil {
				return err
			}
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := g.AddParams(params...); err != nil {
				return err
			}
			return runCall(cmd, g)
		}),
	}

	conn.register(cmd)
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "Parameter as name=value (repeatable)")
	return cmd
}
