package parser

import (
	"errors"
	"fmt"
)

// Tokenizer failure reasons.
const (
	reasonNoClosingQuotation = "No closing quotation"
	reasonNoEscapedCharacter = "No escaped character"
)

var (
	// ErrMalformedTree indicates the tree source is not valid YAML.
	ErrMalformedTree = errors.New("parser: malformed tree source")

	// ErrUnsupportedFormat indicates an unknown database format.
	ErrUnsupportedFormat = errors.New("parser: unsupported format")
)

// SyntaxError reports a malformed line of a line-grammar database.
type SyntaxError struct {
	// Line is the 1-based line number.
	Line int
	// Text is the offending raw line.
	Text string
	// Reason is the violated parser state or a tokenizer message.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

// StructuralError reports a tree-grammar node of the wrong shape.
type StructuralError struct {
	// Path is the dotted key of the offending node.
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Path == "" {
		return "structure error: " + e.Reason
	}
	return fmt.Sprintf("structure error at %q: %s", e.Path, e.Reason)
}
