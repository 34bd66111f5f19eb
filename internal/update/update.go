// Package update compares the running build against the latest published
// release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the latest-release endpoint of the project.
	DefaultReleasesURL = "https://api.github.com/repos/ifp/vicidial-cli/releases/latest"
	// CheckTimeout bounds the release lookup.
	CheckTimeout = 5 * time.Second
)

// ReleasesURL is the release endpoint. Tests point it at a local server.
var ReleasesURL = DefaultReleasesURL

// Release is the subset of the release payload the check reads.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckResult compares the running version with the latest release.
type CheckResult struct {
	CurrentVersion  string `json:"current"`
	LatestVersion   string `json:"latest"`
	UpdateURL       string `json:"url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// Check fetches the latest release and reports whether it is newer than
// currentVersion. Development builds are never reported as outdated.
func Check(ctx context.Context, currentVersion string) (*CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check failed: unexpected status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	if strings.TrimSpace(release.TagName) == "" {
		return nil, fmt.Errorf("release check failed: no tag in response")
	}

	return &CheckResult{
		CurrentVersion:  currentVersion,
		LatestVersion:   strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:       release.HTMLURL,
		UpdateAvailable: Newer(release.TagName, currentVersion),
	}, nil
}

// Newer reports whether latest is a higher semantic version than current.
// Unparseable versions, including "dev", compare as not newer.
func Newer(latest, current string) bool {
	l, c := normalizeVersion(latest), normalizeVersion(current)
	if !semver.IsValid(l) || !semver.IsValid(c) {
		return false
	}
	return semver.Compare(l, c) > 0
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
