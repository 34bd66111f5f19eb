package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
	"github.com/ifp/vicidial-cli/internal/config"
	"github.com/ifp/vicidial-cli/internal/dryrun"
	"github.com/ifp/vicidial-cli/internal/validation"
)

// newExecutor builds the HTTP executor used by gateways. Tests replace it.
var newExecutor = func() api.HTTPExecutor {
	return api.New()
}

// connectionFlags are the per-command overrides of the stored profile.
type connectionFlags struct {
	host     string
	user     string
	pass     string
	protocol string
	resource string
}

func (c *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.host, "host", "", "Dialer host, optionally with port or path prefix (env VICIDIAL_HOST)")
	cmd.Flags().StringVar(&c.user, "user", "", "API user (env VICIDIAL_USER)")
	cmd.Flags().StringVar(&c.pass, "pass", "", "API password (env VICIDIAL_PASS)")
	cmd.Flags().StringVar(&c.protocol, "protocol", "", "http or https (default http)")
	cmd.Flags().StringVar(&c.resource, "resource", "", "API script path (default non_agent_api.php)")
	flagAlias(cmd.Flags(), "protocol", "proto")
}

// settings resolves profile, environment and flags into connection settings.
func (c *connectionFlags) settings() (config.Settings, error) {
	s, err := config.Resolve(config.Overrides{
		Profile:  flags.Profile,
		Protocol: c.protocol,
		Host:     c.host,
		Resource: c.resource,
		User:     c.user,
		Pass:     c.pass,
		Timeout:  flags.Timeout,
	})
	if err != nil {
		return config.Settings{}, err
	}
	if err := validation.ValidateProtocol(s.Protocol); err != nil {
		return config.Settings{}, err
	}
	s.Protocol = strings.ToLower(s.Protocol)
	if s.Host != "" {
		if err := validation.ValidateHost(s.Host); err != nil {
			return config.Settings{}, fmt.Errorf("invalid host: %w", err)
		}
	}
	return s, nil
}

// newGateway returns a gateway configured from s with the global strict flag.
func newGateway(s config.Settings) *api.Gateway {
	g := api.NewGateway(newExecutor())
	s.Configure(g.RequestBuilder)
	g.SetStrict(flags.Strict)
	return g
}

// parseParams turns repeated --param name=value flags into parameters.
func parseParams(raw []string) ([]api.Param, error) {
	params := make([]api.Param, 0, len(raw))
	for _, arg := range raw {
		name, value, err := validation.ParseParam(arg)
		if err != nil {
			return nil, err
		}
		params = append(params, api.Param{Name: name, Value: value})
	}
	return params, nil
}

// previewOf builds the dry-run preview of a configured gateway.
func previewOf(g *api.Gateway) (*dryrun.Preview, error) {
	uri, err := g.RedactedURI()
	if err != nil {
		return nil, err
	}
	preview := &dryrun.Preview{
		Action:  g.Action().String(),
		URI:     uri,
		Timeout: g.ConnectionTimeout().String(),
	}
	if g.Protocol() == "http://" {
		preview.Warnings = append(preview.Warnings, "credentials are sent in the query string over plain http")
	}
	return preview, nil
}
