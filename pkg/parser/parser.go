// Package parser turns database source text into entries.
//
// Two grammars are supported: the line grammar (one entry per line,
// indented notes lines, shell-style quoting) and the tree grammar (nested
// YAML mappings with U/P/L/N account fields). Both produce entries with
// normalized keys in source order.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// Format identifies a database grammar.
type Format string

const (
	FormatLine Format = "line"
	FormatTree Format = "tree"
)

// treeExtensions select the tree grammar.
var treeExtensions = []string{".yaml", ".yml"}

// Parser is the interface implemented by both grammars.
type Parser interface {
	// Parse parses the whole source into entries.
	Parse(src []byte) ([]entry.Entry, error)

	// Format returns the grammar handled by this parser.
	Format() Format
}

// LineParser parses the line grammar.
type LineParser struct{}

// Parse implements Parser.
func (LineParser) Parse(src []byte) ([]entry.Entry, error) {
	return ParseLines(string(src))
}

// Format implements Parser.
func (LineParser) Format() Format { return FormatLine }

// TreeParser parses the tree grammar.
type TreeParser struct{}

// Parse implements Parser.
func (TreeParser) Parse(src []byte) ([]entry.Entry, error) {
	return ParseTree(src)
}

// Format implements Parser.
func (TreeParser) Format() Format { return FormatTree }

// GetParser returns the parser for the given format.
func GetParser(format Format) (Parser, error) {
	switch format {
	case FormatLine:
		return LineParser{}, nil
	case FormatTree:
		return TreeParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// FormatForPath picks the grammar from a file extension. The path must
// not carry an encryption extension any more.
func FormatForPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range treeExtensions {
		if ext == e {
			return FormatTree
		}
	}
	return FormatLine
}

// Result is the outcome of a parse: either entries or an error.
type Result struct {
	Entries []entry.Entry
	Err     error
}

// OK reports whether the parse succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Parse parses src with the grammar of format.
func Parse(format Format, src []byte) Result {
	p, err := GetParser(format)
	if err != nil {
		return Result{Err: err}
	}
	entries, err := p.Parse(src)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Entries: entries}
}
