// Package importer converts exports of other password managers into pw
// entries. Supports 1Password CSV, Bitwarden JSON, and LastPass CSV formats.
//
// Folders and groups become the leading parts of the dotted key, so a
// Bitwarden login "GitHub" in folder "Work" is imported as "work.github".
package importer

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/forest6511/pw/pkg/entry"
)

// Source represents the source password manager format.
type Source string

const (
	Source1Password Source = "1password"
	SourceBitwarden Source = "bitwarden"
	SourceLastPass  Source = "lastpass"
)

// ImportResult contains the results of an import operation.
type ImportResult struct {
	// Entries are the successfully converted entries, in export order.
	Entries []entry.Entry

	// Warnings are non-fatal issues encountered during parsing.
	Warnings []string

	// Skipped are items that were skipped with reasons.
	Skipped []SkippedItem
}

// SkippedItem represents an item that was skipped during import.
type SkippedItem struct {
	OriginalName string
	Reason       string
}

// Parser is the interface for export format parsers.
type Parser interface {
	// Parse parses the export and returns pw entries.
	Parse(data []byte) (*ImportResult, error)

	// Source returns the source type for this parser.
	Source() Source
}

// utf8BOM is stripped from CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SanitizeKeyPart turns a folder or item name into one key segment:
// Unicode NFC, surrounding whitespace removed, runs of whitespace
// collapsed, and dots replaced so a name never adds a level.
func SanitizeKeyPart(name string) string {
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.ReplaceAll(name, ".", "_")
}

// BuildKey joins the group path and the item name into a normalized
// dotted key. Groups may be nested with '/' or '\'.
func BuildKey(group, name string) string {
	var parts []string
	for _, g := range strings.FieldsFunc(group, func(r rune) bool { return r == '/' || r == '\\' }) {
		if p := SanitizeKeyPart(g); p != "" {
			parts = append(parts, p)
		}
	}
	if p := SanitizeKeyPart(name); p != "" {
		parts = append(parts, p)
	}
	return entry.NormalizeKey(strings.Join(parts, "."))
}

// GenerateFallbackKey generates a fallback name when the original name is empty.
// 1. Use first non-empty URL hostname as fallback
// 2. If no URL, use imported_item_N
func GenerateFallbackKey(url string, counter int) string {
	if url != "" {
		if hostname := extractHostname(url); hostname != "" {
			return hostname
		}
	}
	return fmt.Sprintf("imported_item_%d", counter)
}

// extractHostname extracts the hostname from a URL.
func extractHostname(urlStr string) string {
	// Simple hostname extraction without full URL parsing
	urlStr = strings.TrimPrefix(urlStr, "https://")
	urlStr = strings.TrimPrefix(urlStr, "http://")

	if idx := strings.Index(urlStr, "/"); idx != -1 {
		urlStr = urlStr[:idx]
	}
	if idx := strings.Index(urlStr, ":"); idx != -1 {
		urlStr = urlStr[:idx]
	}

	return strings.TrimPrefix(urlStr, "www.")
}

// DecodeHTMLEntities decodes HTML entities found in LastPass exports.
func DecodeHTMLEntities(s string) string {
	return html.UnescapeString(s)
}

// IsEmptyOrWhitespace checks if a string is empty or contains only whitespace.
func IsEmptyOrWhitespace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// joinNotes joins the non-empty note parts with newlines.
func joinNotes(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if !IsEmptyOrWhitespace(p) {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "\n")
}

// GetParser returns a parser for the given source.
func GetParser(source Source) (Parser, error) {
	switch source {
	case Source1Password:
		return &OnePasswordParser{}, nil
	case SourceBitwarden:
		return &BitwardenParser{}, nil
	case SourceLastPass:
		return &LastPassParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported import source: %s", source)
	}
}

// ValidSources returns a list of valid source names.
func ValidSources() []string {
	return []string{
		string(Source1Password),
		string(SourceBitwarden),
		string(SourceLastPass),
	}
}
