package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest6511/pw/pkg/entry"
)

func TestExpandPattern(t *testing.T) {
	availableKeys := []string{
		"mail.google",
		"mail.proton",
		"bank",
		"phones.myphone",
		"wifi_home",
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "exact match",
			pattern:  "bank",
			expected: []string{"bank"},
		},
		{
			name:     "exact match is normalized",
			pattern:  "WiFi Home",
			expected: []string{"wifi_home"},
		},
		{
			name:     "wildcard prefix",
			pattern:  "mail.*",
			expected: []string{"mail.google", "mail.proton"},
		},
		{
			name:     "wildcard suffix",
			pattern:  "*phone",
			expected: []string{"phones.myphone"},
		},
		{
			name:     "question mark",
			pattern:  "ban?",
			expected: []string{"bank"},
		},
		{
			name:     "match all",
			pattern:  "*",
			expected: availableKeys,
		},
		{
			name:    "no match glob",
			pattern: "nothing.*",
			wantErr: true,
		},
		{
			name:    "no match exact",
			pattern: "nothing",
			wantErr: true,
		},
		{
			name:    "invalid pattern",
			pattern: "[invalid",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ExpandPattern(tc.pattern, availableKeys)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestExpandPatterns(t *testing.T) {
	availableKeys := []string{"a", "b", "c", "ab", "bc"}

	tests := []struct {
		name     string
		patterns []string
		expected []string
		wantErr  bool
	}{
		{name: "single pattern", patterns: []string{"a"}, expected: []string{"a"}},
		{name: "multiple patterns", patterns: []string{"a", "b"}, expected: []string{"a", "b"}},
		{name: "overlapping patterns", patterns: []string{"a*", "ab"}, expected: []string{"a", "ab"}},
		{name: "glob pattern", patterns: []string{"*b"}, expected: []string{"b", "ab"}},
		{name: "missing key", patterns: []string{"a", "zzz"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ExpandPatterns(tc.patterns, availableKeys)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestSelectEntries(t *testing.T) {
	entries := []entry.Entry{
		{Key: "b", User: "1"},
		{Key: "a", User: "2"},
		{Key: "c", User: "3"},
		{Key: "a", User: "4"},
	}

	got := SelectEntries(entries, []string{"a", "c"})

	assert.Equal(t, []entry.Entry{entries[1], entries[2], entries[3]}, got)
	assert.Nil(t, SelectEntries(entries, nil))
}
