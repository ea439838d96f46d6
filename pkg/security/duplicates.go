package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/forest6511/pw/pkg/entry"
)

// EntryRef identifies an entry without its secret.
type EntryRef struct {
	Key  string `json:"key"`
	User string `json:"user,omitempty"`
}

// DuplicateGroup represents a group of entries sharing the same password.
type DuplicateGroup struct {
	// Entries contains the entries with duplicate values.
	Entries []EntryRef `json:"entries,omitempty"`
	// Count is the number of duplicates.
	Count int `json:"count"`
}

// duplicateEntry tracks a single password occurrence for grouping.
type duplicateEntry struct {
	ref  EntryRef
	hash string
}

// FindDuplicates scans all passwords for duplicate values.
// Uses HMAC-SHA256 with a session-local key for privacy-preserving comparison.
// Returns groups sorted by count (most duplicated first).
//
// Security properties:
// - HMAC with session-local key prevents offline guessing attacks
// - Hashes are computed per-session, never persisted
// - Values are normalized (trimmed whitespace, Unicode NFC)
func (c *Calculator) FindDuplicates(entries []entry.Entry, limit int) ([]DuplicateGroup, error) {
	if err := c.ensureKey(); err != nil {
		return nil, err
	}

	// Collect all passwords with their hashes, in source order
	var seen []duplicateEntry
	for _, e := range entries {
		value := normalizeValue(e.Password)
		if value == "" {
			continue
		}
		seen = append(seen, duplicateEntry{
			ref:  EntryRef{Key: e.Key, User: e.User},
			hash: computeValueHash(value, c.hmacKey),
		})
	}

	// Group by hash, remembering first occurrence for a stable order
	hashGroups := make(map[string][]EntryRef)
	var order []string
	for _, d := range seen {
		if _, ok := hashGroups[d.hash]; !ok {
			order = append(order, d.hash)
		}
		hashGroups[d.hash] = append(hashGroups[d.hash], d.ref)
	}

	// Convert to DuplicateGroups (only groups with count > 1)
	var groups []DuplicateGroup
	for _, hash := range order {
		refs := hashGroups[hash]
		if len(refs) <= 1 {
			continue // Not a duplicate
		}
		groups = append(groups, DuplicateGroup{Entries: refs, Count: len(refs)})
	}

	// Sort by count (descending)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups, nil
}

func (c *Calculator) ensureKey() error {
	if c.hmacKey != nil {
		return nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return err
	}
	c.hmacKey = key
	return nil
}

// computeValueHash computes HMAC-SHA256 of a value with the session key.
func computeValueHash(value string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeValue trims surrounding whitespace and applies Unicode NFC so
// that composed and decomposed forms compare equal.
func normalizeValue(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// FindWeakPasswords returns issues for entries with weak passwords.
func (c *Calculator) FindWeakPasswords(entries []entry.Entry, limit int) []SecurityIssue {
	var issues []SecurityIssue

	for _, e := range entries {
		if e.Password == "" {
			continue
		}

		if EntryStrength(e) == PasswordWeak {
			issues = append(issues, weakIssue(e))
		}
	}

	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}

	return issues
}

func weakIssue(e entry.Entry) SecurityIssue {
	suggestion := "Use a longer password (14+ characters)"
	if IsAPIKeyEntry(e) {
		suggestion = "Use a longer token (32+ characters)"
	}
	return SecurityIssue{
		Type:        IssueWeakPassword,
		Severity:    SeverityWarning,
		Entries:     []EntryRef{{Key: e.Key, User: e.User}},
		Description: "Password has insufficient strength (" + formatLength(e.Password) + ")",
		Suggestion:  suggestion,
	}
}

// formatLength returns a human-readable length description.
func formatLength(value string) string {
	n := len([]rune(value))
	if n == 1 {
		return "1 character"
	}
	return strconv.Itoa(n) + " characters"
}
