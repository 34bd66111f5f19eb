package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uriParams = []string{
	"--param", "phone_number=5551234567",
	"--param", "phone_code=1",
	"--param", "list_id=30000",
	"--param", "source=test",
}

func TestURI_RedactsPassword(t *testing.T) {
	d := setupDialer(t, nil)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), withArgs([]string{"uri"}, uriParams...)))
	})

	uri := strings.TrimSpace(output)
	assert.True(t, strings.HasPrefix(uri, "http://127.0.0.1:"), uri)
	assert.Contains(t, uri, "/non_agent_api.php?function=add_lead&user=apiuser&pass=***&phone_number=5551234567")
	assert.NotContains(t, uri, "s3cret")
	assert.Equal(t, 0, d.count())
}

func TestURI_ShowPass(t *testing.T) {
	setupDialer(t, nil)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), withArgs([]string{"uri", "--show-pass"}, uriParams...)))
	})
	assert.Contains(t, output, "pass=s3cret&")
}

func TestURI_JSON(t *testing.T) {
	setupDialer(t, nil)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), withArgs([]string{"uri", "-o", "json", "--timeout", "20s"}, uriParams...)))
	})

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "add_lead", result["action"])
	assert.Equal(t, true, result["redacted"])
	assert.Equal(t, "20s", result["timeout"])
}

func TestURI_HTTPSAndResource(t *testing.T) {
	t.Setenv("VICIDIAL_USER", "apiuser")
	t.Setenv("VICIDIAL_PASS", "s3cret")

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), withArgs([]string{
			"uri", "--host", "dialer.example.com/vicidial", "--protocol", "https", "--resource", "/custom_api.php",
		}, uriParams...)))
	})
	assert.True(t, strings.HasPrefix(output, "https://dialer.example.com/vicidial/custom_api.php?function=add_lead&"), output)
}

func TestURI_InvalidProtocol(t *testing.T) {
	setupDialer(t, nil)

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), withArgs([]string{"uri", "--protocol", "ftp"}, uriParams...))
	})
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestURI_HostWithScheme(t *testing.T) {
	setupDialer(t, nil)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), withArgs([]string{"uri", "--host", "http://dialer.example.com"}, uriParams...))
	})
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, "must not include a scheme")
}
