// Package resolve provides fuzzy matching of user input against known names.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no items to match against")
)

// AmbiguousError indicates multiple candidates matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous match for %q, candidates: %s", e.Query, strings.Join(e.Matches, ", "))
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// Match finds the best matching name for query.
//
// Behavior:
// - Empty query or empty items are errors.
// - Exact case-insensitive matches win.
// - Case-insensitive fuzzy matching otherwise.
// - If the top two fuzzy results tie on score, returns *AmbiguousError.
func Match(query string, items []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(items) == 0 {
		return "", ErrEmptyItems
	}

	for _, item := range items {
		if strings.EqualFold(item, query) {
			return item, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerSource(items))
	if len(results) == 0 {
		return "", fmt.Errorf("no match found for %q", query)
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return "", &AmbiguousError{Query: query, Matches: names(items, results, 5)}
	}
	return items[results[0].Index], nil
}

// Suggest returns up to limit names resembling query, best first, for
// did-you-mean hints. When no fuzzy match exists it falls back to names
// equal to query once separators are ignored ("add-lead" → "add_lead").
func Suggest(query string, items []string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 || limit <= 0 {
		return nil
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerSource(items))
	if len(results) > 0 {
		return names(items, results, limit)
	}

	// Fall back to candidates that share a normalized form with the query.
	normalized := normalize(query)
	var out []string
	for _, item := range items {
		if normalize(item) == normalized {
			out = append(out, item)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// normalize lowercases and strips separators so that "Add-Lead", "addLead"
// and "add_lead" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func names(items []string, results fuzzy.Matches, limit int) []string {
	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = items[r.Index]
	}
	return out
}
