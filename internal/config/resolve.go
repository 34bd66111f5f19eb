package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ifp/vicidial-cli/internal/api"
)

const (
	envHost     = "VICIDIAL_HOST"
	envUser     = "VICIDIAL_USER"
	envPass     = "VICIDIAL_PASS"
	envProtocol = "VICIDIAL_PROTOCOL"
	envResource = "VICIDIAL_RESOURCE"
	envTimeout  = "VICIDIAL_TIMEOUT"
)

// Settings are the resolved connection settings for one invocation.
type Settings struct {
	Profile  string        `json:"profile,omitempty"`
	Protocol string        `json:"protocol"`
	Host     string        `json:"host"`
	Resource string        `json:"resource"`
	User     string        `json:"user"`
	Pass     string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
}

// Overrides carries values given on the command line. Empty fields do not
// override anything.
type Overrides struct {
	Profile  string
	Protocol string
	Host     string
	Resource string
	User     string
	Pass     string
	Timeout  time.Duration
}

// Resolve merges defaults, the stored profile, VICIDIAL_* environment
// variables and flag overrides, in increasing order of precedence. A missing
// profile is not an error; incomplete settings are reported by the request
// builder when the URI is compiled.
func Resolve(o Overrides) (Settings, error) {
	s := Settings{
		Protocol: api.DefaultProtocol,
		Resource: api.DefaultResource,
		Timeout:  api.DefaultTimeout,
	}

	profile := o.Profile
	if profile == "" {
		var err error
		if profile, err = ActiveProfile(); err != nil {
			return Settings{}, err
		}
	}
	p, err := LoadProfile(profile)
	switch {
	case err == nil:
		s.Profile = profile
		s.applyProfile(p)
	case errors.Is(err, ErrNotConfigured):
		if o.Profile != "" {
			return Settings{}, fmt.Errorf("profile %q not found: %w", o.Profile, err)
		}
	default:
		return Settings{}, err
	}

	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}

	setIf(&s.Protocol, o.Protocol)
	setIf(&s.Host, o.Host)
	setIf(&s.Resource, o.Resource)
	setIf(&s.User, o.User)
	if o.Pass != "" {
		s.Pass = o.Pass
	}
	if o.Timeout > 0 {
		s.Timeout = o.Timeout
	}
	return s, nil
}

func (s *Settings) applyProfile(p Profile) {
	setIf(&s.Protocol, p.Protocol)
	setIf(&s.Host, p.Host)
	setIf(&s.Resource, p.Resource)
	setIf(&s.User, p.User)
	if p.Pass != "" {
		s.Pass = p.Pass
	}
	if p.TimeoutSeconds > 0 {
		s.Timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
}

func (s *Settings) applyEnv() error {
	setIf(&s.Protocol, firstNonBlankEnv(envProtocol))
	setIf(&s.Host, firstNonBlankEnv(envHost))
	setIf(&s.Resource, firstNonBlankEnv(envResource))
	setIf(&s.User, firstNonBlankEnv(envUser))
	if pass, ok := firstNonBlankSecretEnv(envPass); ok {
		s.Pass = pass
	}
	if raw := firstNonBlankEnv(envTimeout); raw != "" {
		d, err := ParseTimeout(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", envTimeout, err)
		}
		s.Timeout = d
	}
	return nil
}

// ParseTimeout accepts a Go duration ("20s") or a whole number of seconds.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", raw)
	}
	return d, nil
}

// Configure copies the settings into a request builder.
func (s Settings) Configure(b *api.RequestBuilder) {
	b.SetProtocol(s.Protocol).
		SetHost(s.Host).
		SetResource(s.Resource).
		SetUser(s.User).
		SetPass(s.Pass).
		SetConnectionTimeout(s.Timeout)
}

// ToProfile converts resolved settings into a storable profile.
func (s Settings) ToProfile() Profile {
	p := Profile{
		Host: s.Host,
		User: s.User,
		Pass: s.Pass,
	}
	if s.Protocol != api.DefaultProtocol {
		p.Protocol = s.Protocol
	}
	if s.Resource != api.DefaultResource {
		p.Resource = s.Resource
	}
	// Profiles store whole seconds; sub-second timeouts round up so they
	// never collapse to the default.
	if s.Timeout > 0 && s.Timeout != api.DefaultTimeout {
		p.TimeoutSeconds = int((s.Timeout + time.Second - 1) / time.Second)
	}
	return p
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
