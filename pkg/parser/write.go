package parser

import (
	"strings"
	"unicode"

	"github.com/forest6511/pw/pkg/entry"
)

// notesPrefix indents continuation lines written by MarshalLines.
const notesPrefix = "    "

// MarshalLines writes entries in the line grammar. ParseLines reads the
// result back into the same entries except where the grammar has no way
// to express a value: the link becomes the first notes line, blank notes
// lines are dropped, and trailing colons of a key are lost.
//
// An empty password word reads back as a missing one, so entries without
// a password are not written. They are returned in omitted.
func MarshalLines(entries []entry.Entry) (data []byte, omitted []entry.Entry) {
	var b strings.Builder
	for _, e := range entries {
		if e.Password == "" {
			omitted = append(omitted, e)
			continue
		}

		b.WriteString(quoteWord(e.Key))
		if e.User != "" {
			b.WriteByte(' ')
			b.WriteString(quoteWord(e.User))
		}
		b.WriteByte(' ')
		b.WriteString(quoteWord(e.Password))
		b.WriteByte('\n')

		for _, line := range strings.Split(e.Annotation(), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			b.WriteString(notesPrefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), omitted
}

// quoteWord returns s in a form the lexer reads back as exactly s.
func quoteWord(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, unsafeRune) < 0 {
		return s
	}
	// Single quotes keep everything literal; an embedded quote closes the
	// string, adds a double-quoted one and reopens.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func unsafeRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	return !strings.ContainsRune("@%+=:,./_-", r)
}
