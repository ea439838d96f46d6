// Package search filters parsed entries by key and user substrings.
package search

import (
	"errors"
	"sort"
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// ErrNotUnique is returned by Strict when a search did not find exactly
// one entry.
var ErrNotUnique = errors.New("multiple or no records found")

// Query is a key/user substring pair. Empty patterns match everything.
type Query struct {
	Key  string
	User string
}

// ParseQuery builds a query from command-line arguments.
//
// A single argument has the form [USER@][KEY] and is split at the
// right-most '@', since user names are often e-mail addresses. With a
// second argument the first one is the key pattern and the second the
// user pattern, both taken verbatim.
func ParseQuery(args []string) Query {
	var q Query
	switch {
	case len(args) == 0:
	case len(args) >= 2 && args[1] != "":
		q.Key, q.User = args[0], args[1]
	default:
		q.Key = args[0]
		if i := strings.LastIndex(q.Key, "@"); i >= 0 {
			q.User, q.Key = q.Key[:i], q.Key[i+1:]
		}
	}
	return q
}

// Search returns the entries whose key contains keyPattern and whose user
// contains userPattern, stably sorted by key.
//
// The key pattern is normalized like stored keys; the user pattern is used
// as given and matched case-sensitively. The input slice is not modified.
func Search(entries []entry.Entry, keyPattern, userPattern string) []entry.Entry {
	keyPattern = entry.NormalizeKey(keyPattern)

	results := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e.Key, keyPattern) && strings.Contains(e.User, userPattern) {
			results = append(results, e)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results
}

// Run is Search for a Query.
func (q Query) Run(entries []entry.Entry) []entry.Entry {
	return Search(entries, q.Key, q.User)
}

// Strict returns ErrNotUnique unless results holds exactly one entry.
func Strict(results []entry.Entry) error {
	if len(results) != 1 {
		return ErrNotUnique
	}
	return nil
}
