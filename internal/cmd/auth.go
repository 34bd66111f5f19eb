package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
	"github.com/ifp/vicidial-cli/internal/config"
	"github.com/ifp/vicidial-cli/internal/urlparse"
	"github.com/ifp/vicidial-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage dialer credentials",
		Long:    "Store VICIdial API credentials in your OS keychain as named profiles.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthUseCmd())

	return cmd
}

// profileName returns the global --profile value, or "default".
func profileName() string {
	if p := strings.TrimSpace(flags.Profile); p != "" {
		return p
	}
	return "default"
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		host     string
		user     string
		pass     string
		protocol string
		resource string
		rawURL   string
		envFile  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to a profile",
		Long: strings.TrimSpace(`
Save VICIdial non-agent API credentials securely to your OS keychain.

You'll need:
- Host: the dialer web server, optionally with a port or path prefix
- User and pass: an API user with the "View Reports" or API permission

The profile becomes the current one. Use --profile to keep several dialers.
`),
		Example: strings.TrimSpace(`
  vicidial auth login --host dialer.example.com --user apiuser --pass secret
  vicidial auth login --profile lab --host 10.0.0.5/vicidial --protocol https --user apiuser --pass secret
  vicidial auth login --url https://dialer.example.com/vicidial/non_agent_api.php --user apiuser --pass secret
  vicidial auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := profileName()

			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)

				fill := func(dst *string, key string) {
					if *dst == "" {
						*dst = strings.TrimSpace(envVars[key])
					}
				}
				fill(&host, "VICIDIAL_HOST")
				fill(&user, "VICIDIAL_USER")
				fill(&protocol, "VICIDIAL_PROTOCOL")
				fill(&resource, "VICIDIAL_RESOURCE")
				if pass == "" {
					pass = envVars["VICIDIAL_PASS"]
				}
				if flags.Profile == "" {
					if envProfile := strings.TrimSpace(envVars["VICIDIAL_PROFILE"]); envProfile != "" {
						profile = envProfile
					}
				}
			}

			if rawURL != "" {
				ep, err := urlparse.Parse(rawURL)
				if err != nil {
					return err
				}
				fill := func(dst *string, v string) {
					if *dst == "" {
						*dst = v
					}
				}
				fill(&host, ep.Host)
				fill(&protocol, ep.Protocol)
				fill(&resource, ep.Resource)
				fill(&user, ep.User)
				fill(&pass, ep.Pass)
			}

			host = strings.TrimSuffix(strings.TrimSpace(host), "/")
			if host == "" {
				return fmt.Errorf("--host is required")
			}
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			if pass == "" {
				return fmt.Errorf("--pass is required")
			}
			if err := validation.ValidateHost(host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
			if protocol != "" {
				if err := validation.ValidateProtocol(protocol); err != nil {
					return err
				}
			}

			s := config.Settings{
				Protocol: api.DefaultProtocol,
				Host:     host,
				Resource: api.DefaultResource,
				User:     user,
				Pass:     pass,
				Timeout:  api.DefaultTimeout,
			}
			if protocol != "" {
				s.Protocol = api.NewRequestBuilder().SetProtocol(strings.ToLower(strings.TrimSpace(protocol))).Protocol()
			}
			if resource != "" {
				s.Resource = strings.TrimPrefix(resource, "/")
			}
			if flags.Timeout > 0 {
				s.Timeout = flags.Timeout
			}

			if err := config.SaveProfile(profile, s.ToProfile()); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"saved":   true,
					"profile": profile,
					"host":    host,
					"user":    user,
				})
			}
			printIfNotQuiet(cmd, "Credentials saved to profile %s\n", profile)
			printIfNotQuiet(cmd, "  Host: %s%s\n", s.Protocol, host)
			printIfNotQuiet(cmd, "  User: %s\n", user)
			return nil
		}),
	}

	cmd.Flags().StringVar(&host, "host", "", "Dialer host, optionally with port or path prefix")
	cmd.Flags().StringVar(&user, "user", "", "API user")
	cmd.Flags().StringVar(&pass, "pass", "", "API password")
	cmd.Flags().StringVar(&protocol, "protocol", "", "http or https (default http)")
	cmd.Flags().StringVar(&resource, "resource", "", "API script path (default non_agent_api.php)")
	cmd.Flags().StringVar(&rawURL, "url", "", "Dialer URL; fills host, protocol and resource (and user/pass from its query)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load VICIDIAL_* (and optional VICIDIAL_KEYRING_*) values from a .env file")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// applyAuthEnvFileRuntimeVars copies keyring settings from --env-file into
// the process environment when they are not already exported.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	keys := []string{
		"VICIDIAL_KEYRING_BACKEND",
		"VICIDIAL_KEYRING_PASSWORD",
		"VICIDIAL_CREDENTIALS_DIR",
	}

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(envVars[key])
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved connection settings",
		Long:  "Display the settings a call would use after merging the profile, VICIDIAL_* variables and flags. The password is masked.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, err := config.Resolve(config.Overrides{Profile: flags.Profile, Timeout: flags.Timeout})
			if err != nil {
				return err
			}
			configured := s.Host != "" && s.User != "" && s.Pass != ""

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"configured": configured,
					"profile":    s.Profile,
					"protocol":   s.Protocol,
					"host":       s.Host,
					"resource":   s.Resource,
					"user":       s.User,
					"pass":       maskSecret(s.Pass),
					"timeout":    s.Timeout.String(),
				})
			}

			if !configured {
				printIfNotQuiet(cmd, "Not configured.\n")
				printIfNotQuiet(cmd, "Run 'vicidial auth login' or set VICIDIAL_HOST, VICIDIAL_USER and VICIDIAL_PASS.\n")
				return nil
			}
			printIfNotQuiet(cmd, "Configured\n")
			if s.Profile != "" {
				printIfNotQuiet(cmd, "  Profile: %s\n", s.Profile)
			}
			printIfNotQuiet(cmd, "  Endpoint: %s%s/%s\n", s.Protocol, s.Host, s.Resource)
			printIfNotQuiet(cmd, "  User: %s\n", s.User)
			printIfNotQuiet(cmd, "  Pass: %s\n", maskSecret(s.Pass))
			printIfNotQuiet(cmd, "  Timeout: %s\n", s.Timeout)
			return nil
		}),
	}
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a profile from the keychain",
		Long:  "Delete the stored credentials of --profile, or of the current profile.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := strings.TrimSpace(flags.Profile)
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					printIfNotQuiet(cmd, "No credentials found.\n")
					return nil
				}
				return err
			}
			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			printIfNotQuiet(cmd, "Profile %s removed.\n", profile)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": current, "profiles": profiles})
			}
			if len(profiles) == 0 {
				printIfNotQuiet(cmd, "No profiles stored.\n")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				printIfNotQuiet(cmd, "%s %s\n", marker, p)
			}
			return nil
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					return fmt.Errorf("profile %q is not configured", profile)
				}
				return err
			}
			if err := config.SetCurrentProfile(profile); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Now using profile %s\n", profile)
			return nil
		}),
	}
}

// maskSecret masks a secret for display, showing only first and last 2 characters
func maskSecret(secret string) string {
	if len(secret) < 6 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
}
