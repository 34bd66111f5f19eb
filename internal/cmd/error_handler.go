package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ifp/vicidial-cli/internal/api"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var cfgErr *api.ConfigError
	var tErr *api.TransportError
	var rErr *api.ResponseError

	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Configuration error: %s\n\n", cfgErr.Error())
		msg.WriteString("Suggestions:\n")
		switch {
		case errors.Is(cfgErr, api.ErrMissingHost), errors.Is(cfgErr, api.ErrMissingUser), errors.Is(cfgErr, api.ErrMissingPass):
			msg.WriteString("  - Run: vicidial auth login\n")
			msg.WriteString("  - Or pass --host/--user/--pass, or set VICIDIAL_HOST/VICIDIAL_USER/VICIDIAL_PASS\n")
		case errors.Is(cfgErr, api.ErrMissingRequiredParameter):
			fmt.Fprintf(&msg, "  - Add the parameter: --param %s=VALUE\n", cfgErr.Name)
			msg.WriteString("  - Run: vicidial actions  (lists required fields)\n")
		case errors.Is(cfgErr, api.ErrUnsupportedAction):
			msg.WriteString("  - Run: vicidial actions\n")
		default:
			msg.WriteString("  - Use --dry-run to preview the request\n")
		}

	case errors.As(err, &tErr):
		if api.IsTimeout(tErr) {
			msg.WriteString("Request timed out.\n\n")
			msg.WriteString("Suggestions:\n")
			msg.WriteString("  - Increase --timeout\n")
			msg.WriteString("  - Check that the dialer server is reachable\n")
			break
		}
		fmt.Fprintf(&msg, "Request failed: %s\n\n", tErr.Error())
		msg.WriteString(suggestionsForTransport(tErr))

	case errors.As(err, &rErr):
		if rErr.Outcome == api.OutcomeError {
			fmt.Fprintf(&msg, "%s\n", rErr.Body)
		} else {
			fmt.Fprintf(&msg, "Unrecognized response: %s\n\n", rErr.Body)
			msg.WriteString("Suggestions:\n")
			msg.WriteString("  - Check --resource points at non_agent_api.php\n")
			msg.WriteString("  - Use --debug to see the request\n")
		}

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForTransport(err *api.TransportError) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	text := err.Error()
	switch {
	case err.StatusCode == 401 || err.StatusCode == 403:
		s.WriteString("  - The web server rejected the request before the API ran\n")
		s.WriteString("  - Check any HTTP auth or IP allow-list in front of the dialer\n")
	case err.StatusCode == 404:
		s.WriteString("  - Check --host and --resource (default non_agent_api.php)\n")
	case err.StatusCode >= 500:
		s.WriteString("  - Server error, wait and retry\n")
	case strings.Contains(text, "connection refused"):
		s.WriteString("  - Check the dialer web server is running\n")
		s.WriteString("  - Verify the host: vicidial auth status\n")
	case strings.Contains(text, "no such host"):
		s.WriteString("  - Check the host name spelling\n")
	case strings.Contains(text, "certificate"):
		s.WriteString("  - Verify the server's TLS certificate or use --protocol http on a trusted LAN\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}
