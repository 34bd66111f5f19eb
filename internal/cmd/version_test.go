package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifp/vicidial-cli/internal/update"
)

func withRelease(t *testing.T, tag string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(update.Release{TagName: tag, HTMLURL: "https://example.com/" + tag})
	}))
	original := update.ReleasesURL
	update.ReleasesURL = server.URL
	t.Cleanup(func() {
		server.Close()
		update.ReleasesURL = original
	})
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := version
	version = v
	t.Cleanup(func() { version = old })
}

func TestVersionCheck_UpdateAvailable(t *testing.T) {
	withRelease(t, "v1.4.0")
	withVersion(t, "1.3.2")

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version", "--check"}))
	})
	assert.Contains(t, output, "vicidial-cli version 1.3.2")
	assert.Contains(t, output, "Update available: 1.4.0")
}

func TestVersionCheck_JSON(t *testing.T) {
	withRelease(t, "v1.3.2")
	withVersion(t, "1.3.2")

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"version", "--check", "-q", ".update_available"}))
	})
	assert.Equal(t, "false\n", output)
}
