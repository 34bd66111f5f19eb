package config

import (
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"

	"github.com/ifp/vicidial-cli/internal/api"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{envHost, envUser, envPass, envProtocol, envResource, envTimeout, envProfile} {
		t.Setenv(k, "")
	}
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	s, err := Resolve(Overrides{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if s.Protocol != api.DefaultProtocol || s.Resource != api.DefaultResource || s.Timeout != api.DefaultTimeout {
		t.Fatalf("Resolve() defaults = %+v", s)
	}
	if s.Host != "" || s.Profile != "" {
		t.Fatalf("unexpected host/profile without stored profile: %+v", s)
	}
}

func TestResolve_Precedence(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	if err := SaveProfile("default", Profile{
		Protocol:       "https://",
		Host:           "profile.example.com",
		User:           "profile-user",
		Pass:           "profile-pass",
		TimeoutSeconds: 30,
	}); err != nil {
		t.Fatalf("SaveProfile() error: %v", err)
	}

	t.Setenv(envHost, "env.example.com")
	t.Setenv(envTimeout, "45")

	s, err := Resolve(Overrides{User: "flag-user"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if s.Profile != "default" {
		t.Errorf("Profile = %q", s.Profile)
	}
	if s.Protocol != "https://" {
		t.Errorf("Protocol = %q, want profile value", s.Protocol)
	}
	if s.Host != "env.example.com" {
		t.Errorf("Host = %q, want env value", s.Host)
	}
	if s.User != "flag-user" {
		t.Errorf("User = %q, want flag value", s.User)
	}
	if s.Pass != "profile-pass" {
		t.Errorf("Pass = %q, want profile value", s.Pass)
	}
	if s.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want env value", s.Timeout)
	}
}

func TestResolve_UnknownExplicitProfile(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	_, err := Resolve(Overrides{Profile: "ghost"})
	if err == nil || !strings.Contains(err.Error(), `profile "ghost" not found`) {
		t.Fatalf("Resolve() error = %v", err)
	}
}

func TestResolve_InvalidEnvTimeout(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv(envTimeout, "soon")

	_, err := Resolve(Overrides{})
	if err == nil || !strings.Contains(err.Error(), envTimeout) {
		t.Fatalf("Resolve() error = %v, want %s error", err, envTimeout)
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"15", 15 * time.Second, false},
		{"1500ms", 1500 * time.Millisecond, false},
		{" 2m ", 2 * time.Minute, false},
		{"0", 0, true},
		{"-5s", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeout(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeout(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSettings_ConfigureAndToProfile(t *testing.T) {
	s := Settings{
		Protocol: "https://",
		Host:     "dialer.example.com",
		Resource: api.DefaultResource,
		User:     "api",
		Pass:     "secret",
		Timeout:  api.DefaultTimeout,
	}

	b := api.NewRequestBuilder()
	s.Configure(b)
	if b.Host() != s.Host || b.User() != s.User || b.Pass() != s.Pass || b.ConnectionTimeout() != s.Timeout {
		t.Fatalf("Configure() did not copy settings")
	}

	p := s.ToProfile()
	if p.Protocol != "https://" || p.Resource != "" || p.TimeoutSeconds != 0 {
		t.Fatalf("ToProfile() = %+v, want defaults omitted", p)
	}
}

func TestSettings_ToProfileTimeoutRoundsUp(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    int
	}{
		{500 * time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{20 * time.Second, 20},
		{api.DefaultTimeout, 0},
	}
	for _, tt := range tests {
		p := Settings{Host: "h", Timeout: tt.timeout}.ToProfile()
		if p.TimeoutSeconds != tt.want {
			t.Errorf("ToProfile(%s).TimeoutSeconds = %d, want %d", tt.timeout, p.TimeoutSeconds, tt.want)
		}
	}
}

func TestSubSecondTimeoutSurvivesProfileRoundTrip(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if err := SaveProfile("lab", Settings{Host: "h", User: "u", Pass: "p", Timeout: 500 * time.Millisecond}.ToProfile()); err != nil {
		t.Fatal(err)
	}
	s, err := Resolve(Overrides{Profile: "lab"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Timeout != time.Second {
		t.Errorf("Timeout = %s, want 1s", s.Timeout)
	}
}
