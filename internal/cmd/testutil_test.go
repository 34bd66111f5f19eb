package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/ifp/vicidial-cli/internal/config"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	<-done
	return buf.String()
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	<-done
	return buf.String()
}

// withPersistentKeyring keeps one in-memory keyring for the whole test.
func withPersistentKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	cleanup := config.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(cleanup)
}

// dialer is a fake non-agent API endpoint that records every query.
type dialer struct {
	mu       sync.Mutex
	requests []*http.Request
	respond  func(r *http.Request) (int, string)
}

func (d *dialer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.requests = append(d.requests, r)
	d.mu.Unlock()

	status, body := http.StatusOK, "SUCCESS: add_lead LEAD HAS BEEN ADDED - 5551234567|30000|101|-1|api"
	if d.respond != nil {
		status, body = d.respond(r)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (d *dialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func (d *dialer) last() *http.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return nil
	}
	return d.requests[len(d.requests)-1]
}

// setupDialer starts a fake dialer and points VICIDIAL_* at it.
func setupDialer(t *testing.T, respond func(r *http.Request) (int, string)) *dialer {
	t.Helper()
	d := &dialer{respond: respond}
	server := httptest.NewServer(d)
	t.Cleanup(server.Close)

	t.Setenv("VICIDIAL_HOST", strings.TrimPrefix(server.URL, "http://"))
	t.Setenv("VICIDIAL_USER", "apiuser")
	t.Setenv("VICIDIAL_PASS", "s3cret")
	t.Setenv("VICIDIAL_PROTOCOL", "http")
	t.Setenv("VICIDIAL_OUTPUT", "text")
	return d
}

var addLeadArgs = []string{
	"add-lead",
	"--phone-number", "5551234567",
	"--phone-code", "1",
	"--list-id", "30000",
	"--source", "test",
}

func withArgs(base []string, extra ...string) []string {
	return append(append([]string(nil), base...), extra...)
}
