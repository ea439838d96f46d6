// Package store loads a password database from disk and answers queries
// against it.
//
// A Store is immutable after Load: entries are kept in source order and
// every query returns a fresh slice.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/entry"
	"github.com/forest6511/pw/pkg/parser"
	"github.com/forest6511/pw/pkg/search"
)

var (
	// ErrNotFound indicates the database file does not exist.
	ErrNotFound = errors.New("store: password store not found")

	// ErrInvalidEncoding indicates the decrypted database is not UTF-8.
	ErrInvalidEncoding = errors.New("store: database is not valid UTF-8")
)

// Store holds the entries of one database file.
type Store struct {
	path    string
	format  parser.Format
	entries []entry.Entry
}

// Load reads, decrypts and parses the database at path.
func Load(ctx context.Context, path string, opts codec.Options) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at '%s'", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to access password store: %w", err)
	}

	c, err := codec.ForPath(path, opts)
	if err != nil {
		return nil, err
	}

	src, err := c.Decrypt(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read password store: %w", err)
	}

	return Parse(path, src)
}

// Parse builds a store from already decrypted source. The grammar is
// chosen from path with any encryption extension ignored.
func Parse(path string, src []byte) (*Store, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}

	format := parser.FormatForPath("db" + codec.UnencryptedExt(path))
	result := parser.Parse(format, src)
	if !result.OK() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, result.Err)
	}

	return &Store{path: path, format: format, entries: result.Entries}, nil
}

// New creates a store from entries built elsewhere. Keys are normalized.
func New(path string, entries []entry.Entry) *Store {
	normalized := make([]entry.Entry, len(entries))
	for i, e := range entries {
		e.Key = entry.NormalizeKey(e.Key)
		normalized[i] = e
	}
	return &Store{path: path, format: parser.FormatForPath(path), entries: normalized}
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Format returns the grammar the database is written in.
func (s *Store) Format() parser.Format {
	return s.format
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of all entries in source order.
func (s *Store) Entries() []entry.Entry {
	out := make([]entry.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Search returns the entries matching both patterns, sorted by key.
func (s *Store) Search(keyPattern, userPattern string) []entry.Entry {
	return search.Search(s.entries, keyPattern, userPattern)
}

// Query runs a parsed command-line query.
func (s *Store) Query(q search.Query) []entry.Entry {
	return q.Run(s.entries)
}

// Keys returns the distinct keys, sorted.
func (s *Store) Keys() []string {
	seen := make(map[string]bool, len(s.entries))
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// KeysWithPrefix returns the sorted keys starting with prefix. It backs
// shell completion.
func (s *Store) KeysWithPrefix(prefix string) []string {
	prefix = entry.NormalizeKey(prefix)
	var out []string
	for _, k := range s.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
