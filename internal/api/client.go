package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodySize bounds how much of a response body is read. Larger bodies
// are a transport failure rather than a truncated message.
const maxBodySize = 1 << 20

// dialTimeout caps connection setup independently of the per-call deadline.
const dialTimeout = DefaultTimeout

// Client is the net/http implementation of HTTPExecutor.
type Client struct {
	HTTP *http.Client
}

// Compile-time interface implementation check
var _ HTTPExecutor = (*Client)(nil)

// New creates a client with a cloned default transport enforcing TLS 1.2+.
func New() *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &Client{
		HTTP: &http.Client{Transport: transport},
	}
}

// Get performs the GET request. The timeout bounds the whole round trip,
// connection setup included.
func (c *Client) Get(ctx context.Context, uri string, timeout time.Duration, userAgent string) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected HTTP status %s", resp.Status),
		}
	}
	if len(body) > maxBodySize {
		return nil, &TransportError{Err: fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, maxBodySize)}
	}
	return body, nil
}

// IsTimeout reports whether err stems from the transport deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
