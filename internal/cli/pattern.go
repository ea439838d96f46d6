package cli

import (
	"fmt"
	"path"
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// ExpandPattern expands a glob pattern against available keys.
// If the pattern contains glob characters (*?[), it performs glob matching.
// Otherwise, it performs exact matching. The pattern is normalized like a
// key first, so "Mail Google" matches "mail_google".
func ExpandPattern(pattern string, availableKeys []string) ([]string, error) {
	pattern = entry.NormalizeKey(pattern)

	// Validate pattern syntax
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		for _, key := range availableKeys {
			if key == pattern {
				return []string{pattern}, nil
			}
		}
		return nil, fmt.Errorf("key '%s' not found", pattern)
	}

	var matches []string
	for _, key := range availableKeys {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, key)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no keys match pattern '%s'", pattern)
	}

	return matches, nil
}

// ExpandPatterns expands multiple glob patterns against available keys.
// Returns unique matching keys preserving order of first match.
func ExpandPatterns(patterns []string, availableKeys []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := ExpandPattern(pattern, availableKeys)
		if err != nil {
			return nil, err
		}
		for _, key := range matches {
			if !seen[key] {
				seen[key] = true
				result = append(result, key)
			}
		}
	}

	return result, nil
}

// SelectEntries returns the entries whose key is in keys, in their
// original order.
func SelectEntries(entries []entry.Entry, keys []string) []entry.Entry {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	var out []entry.Entry
	for _, e := range entries {
		if wanted[e.Key] {
			out = append(out, e)
		}
	}
	return out
}
