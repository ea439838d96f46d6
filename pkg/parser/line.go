package parser

import (
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// lineState is the state of the line-grammar parser.
type lineState int

const (
	expectEntry lineState = iota
	expectEntryOrNotes
)

// String returns the state description used in syntax errors.
func (s lineState) String() string {
	if s == expectEntryOrNotes {
		return "expecting entry or notes"
	}
	return "expecting entry"
}

// lineParser holds the state of one ParseLines run.
type lineParser struct {
	state   lineState
	entries []entry.Entry
}

// ParseLines parses a database written in the line grammar:
//
//	key [user] password [notes...]
//	    more notes
//
// A blank line or a line whose first non-blank character is '#' ends a
// notes block. Any other indented line continues the notes of the entry
// right above it. The first error
// aborts the parse and no entries are returned.
func ParseLines(src string) ([]entry.Entry, error) {
	p := &lineParser{state: expectEntry}
	for i, line := range splitLines(src) {
		if err := p.parseLine(line); err != nil {
			return nil, &SyntaxError{Line: i + 1, Text: line, Reason: err.Error()}
		}
	}
	return p.entries, nil
}

func (p *lineParser) parseLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' {
		p.state = expectEntry
		return nil
	}

	if line[0] == ' ' || line[0] == '\t' {
		if p.state != expectEntryOrNotes {
			return stateError(p.state)
		}
		last := &p.entries[len(p.entries)-1]
		if last.Notes != "" {
			last.Notes += "\n"
		}
		last.Notes += trimmed
		return nil
	}

	e, err := p.parseEntry(line)
	if err != nil {
		return err
	}
	p.entries = append(p.entries, e)
	p.state = expectEntryOrNotes
	return nil
}

// parseEntry tokenizes an entry line. Two words mean "key password",
// three or more mean "key user password" with the raw remainder of the
// line as notes. An empty word counts as missing: with an empty password
// the user word becomes the password and inline notes are dropped, and a
// line with neither is a syntax error.
func (p *lineParser) parseEntry(line string) (entry.Entry, error) {
	lex := newLexer(line)

	key, ok, err := lex.next()
	if err != nil {
		return entry.Entry{}, err
	}
	key = strings.TrimRight(key, ":")
	if !ok || key == "" {
		return entry.Entry{}, stateError(p.state)
	}

	user, _, err := lex.next()
	if err != nil {
		return entry.Entry{}, err
	}
	password, _, err := lex.next()
	if err != nil {
		return entry.Entry{}, err
	}

	if user == "" && password == "" {
		return entry.Entry{}, stateError(p.state)
	}
	if password == "" {
		return entry.New(key, "", user, "", ""), nil
	}

	notes := strings.TrimSpace(lex.rest())
	return entry.New(key, user, password, "", notes), nil
}

type stateError lineState

func (e stateError) Error() string {
	return lineState(e).String()
}

// splitLines splits on "\n", "\r\n" and "\r". A trailing terminator does
// not produce an extra empty line.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.TrimSuffix(src, "\n")
	return strings.Split(src, "\n")
}
