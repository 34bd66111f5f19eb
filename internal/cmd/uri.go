package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
)

func newURICmd() *cobra.Command {
	var (
		conn      connectionFlags
		action    string
		rawParams []string
		showPass  bool
	)

	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Print the compiled request URI without sending it",
		Long: strings.TrimSpace(`
Compile the request URI exactly as it would be sent. The password is masked
unless --show-pass is given.
`),
		Example: strings.TrimSpace(`
  vicidial uri --param phone_number=5551234567 --param phone_code=1 --param list_id=30000 --param source=crm
  vicidial uri --action add_lead --param ... --show-pass | xargs curl -s
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, err := conn.settings()
			if err != nil {
				return err
			}
			b := api.NewRequestBuilder()
			s.Configure(b)
			b.SetStrict(flags.Strict)
			if err := b.SetAction(api.Action(action)); err != nil {
				return err
			}
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := b.AddParams(params...); err != nil {
				return err
			}

			uri, err := b.RedactedURI()
			if showPass {
				uri, err = b.CompileURI()
			}
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"action":   b.Action(),
					"uri":      uri,
					"redacted": !showPass,
					"timeout":  b.ConnectionTimeout().String(),
				})
			}
			printIfNotQuiet(cmd, "%s\n", uri)
			return nil
		}),
	}

	conn.register(cmd)
	cmd.Flags().StringVar(&action, "action", string(api.ActionAddLead), "API function to call")
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "Parameter as name=value (repeatable)")
	cmd.Flags().BoolVar(&showPass, "show-pass", false, "Include the password in clear text")
	return cmd
}
