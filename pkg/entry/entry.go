// Package entry defines the credential record shared by the parsers, the
// search engine and the presentation layer.
package entry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// annotationSeparator joins a link and notes when both are present.
const annotationSeparator = " | "

// Entry is one credential record.
//
// Key is always normalized (see NormalizeKey). Entries are values: once a
// parser hands one out it is never modified again.
type Entry struct {
	// Key is the dotted path identifying the account, e.g. "mail.google".
	Key string `json:"key"`

	// User is the account name; empty when the source had none.
	User string `json:"user,omitempty"`

	// Password is the secret value.
	Password string `json:"-"`

	// Link is the URL of the account (tree grammar "L" field only).
	Link string `json:"link,omitempty"`

	// Notes is a free-form, possibly multi-line annotation.
	Notes string `json:"notes,omitempty"`
}

// New creates an entry with a normalized key.
func New(key, user, password, link, notes string) Entry {
	return Entry{
		Key:      NormalizeKey(key),
		User:     user,
		Password: password,
		Link:     link,
		Notes:    notes,
	}
}

// NormalizeKey replaces every space with an underscore and lowercases the
// result. The lowercase mapping is Unicode-aware and locale independent.
func NormalizeKey(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return cases.Lower(language.Und).String(s)
}

// Annotation returns the link and the notes joined for display.
func (e Entry) Annotation() string {
	switch {
	case e.Link != "" && e.Notes != "":
		return e.Link + annotationSeparator + e.Notes
	case e.Link != "":
		return e.Link
	default:
		return e.Notes
	}
}

// NoteLines returns the annotation split into lines. It returns nil when
// there is nothing to show.
func (e Entry) NoteLines() []string {
	a := e.Annotation()
	if a == "" {
		return nil
	}
	return strings.Split(a, "\n")
}
