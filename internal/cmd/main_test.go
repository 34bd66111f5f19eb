package cmd

import (
	"os"
	"testing"

	"github.com/99designs/keyring"

	"github.com/ifp/vicidial-cli/internal/config"
)

func TestMain(m *testing.M) {
	// Keep the developer's shell and ~/.vicidial/.env out of the tests.
	for _, key := range []string{"VICIDIAL_HOST", "VICIDIAL_USER", "VICIDIAL_PASS", "VICIDIAL_PROTOCOL", "VICIDIAL_RESOURCE", "VICIDIAL_TIMEOUT", "VICIDIAL_PROFILE"} {
		_ = os.Unsetenv(key)
	}
	_ = os.Setenv("VICIDIAL_OUTPUT", "text")
	userEnvPath = func() string { return "" }

	cleanup := config.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	})
	code := m.Run()
	cleanup()
	os.Exit(code)
}
