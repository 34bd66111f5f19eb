package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// cloudMetadataHosts are never valid API hosts.
var cloudMetadataHosts = []string{
	"169.254.169.254",
	"metadata.google.internal",
	"metadata",
	"instance-data",
	"fd00:ec2::254",
}

// ValidateProtocol accepts http and https, with or without "://".
func ValidateProtocol(protocol string) error {
	p := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(protocol), "://"))
	if p != "http" && p != "https" {
		return fmt.Errorf("invalid protocol: only http and https are allowed, got %q", protocol)
	}
	return nil
}

// ValidateHost validates the host part of the API URI. It accepts a host
// name or IP address with an optional port and an optional path prefix
// (e.g. "10.0.0.5/vicidial"). Private addresses are allowed because dialer
// servers usually live on the call-center LAN.
func ValidateHost(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.Contains(host, "://") {
		return fmt.Errorf("host %q must not include a scheme (use --protocol)", host)
	}
	if strings.ContainsAny(host, "?#") {
		return fmt.Errorf("host %q must not include a query or fragment", host)
	}

	parsed, err := url.Parse("http://" + host)
	if err != nil {
		return fmt.Errorf("invalid host format: %w", err)
	}
	if parsed.User != nil {
		return fmt.Errorf("host must not include credentials")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("host %q has no hostname", host)
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() {
			return fmt.Errorf("unspecified IP addresses are not allowed")
		}
		return nil
	}
	return validateDomainName(hostname)
}

func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	for _, endpoint := range cloudMetadataHosts {
		if lowercase == endpoint {
			return true
		}
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}

// validateDomainName checks RFC 1123 label syntax without resolving.
func validateDomainName(hostname string) error {
	if len(hostname) > 253 {
		return fmt.Errorf("hostname exceeds 253 characters")
	}
	for _, label := range strings.Split(strings.TrimSuffix(hostname, "."), ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid hostname %q", hostname)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("invalid hostname %q: labels cannot start or end with '-'", hostname)
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
				return fmt.Errorf("invalid hostname %q: invalid character '%c'", hostname, r)
			}
		}
	}
	return nil
}
