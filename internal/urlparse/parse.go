// Package urlparse splits a pasted dialer URL into connection settings.
package urlparse

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Endpoint is a dialer URL broken into the parts a request builder takes.
type Endpoint struct {
	Protocol string // "http://" or "https://"
	Host     string // host[:port] plus any path prefix
	Resource string // script name, empty when the URL does not end in one
	User     string
	Pass     string
}

// Parse accepts URLs such as
//
//	https://dialer.example.com/vicidial/non_agent_api.php
//	http://10.0.0.5/non_agent_api.php?function=add_lead&user=api&pass=secret
//	https://dialer.example.com/vicidial/
//
// A trailing *.php segment becomes the resource and everything before it the
// host. user and pass query values are picked up when present.
func Parse(rawURL string) (*Endpoint, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid URL: missing scheme (expected http:// or https://)")
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("invalid URL: credentials belong in user and pass, not in the host")
	}

	ep := &Endpoint{Protocol: scheme + "://"}

	dir := strings.Trim(parsed.Path, "/")
	if base := path.Base(dir); strings.HasSuffix(strings.ToLower(base), ".php") {
		ep.Resource = base
		dir = strings.TrimSuffix(strings.TrimSuffix(dir, base), "/")
	}
	ep.Host = parsed.Host
	if dir != "" {
		ep.Host += "/" + dir
	}

	q := parsed.Query()
	ep.User = q.Get("user")
	ep.Pass = q.Get("pass")
	return ep, nil
}
