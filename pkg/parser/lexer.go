package parser

import (
	"errors"
	"strings"
)

var (
	errNoClosingQuotation = errors.New(reasonNoClosingQuotation)
	errNoEscapedCharacter = errors.New(reasonNoEscapedCharacter)
)

// lexer splits one line into shell words (POSIX rules). '#' is an ordinary
// character: `foo pass #c` is three words.
//
// Words are separated by unquoted whitespace. Single quotes preserve
// everything literally; inside double quotes a backslash only escapes '"'
// and '\'; outside quotes a backslash escapes any character. Quoted and
// unquoted parts that touch form one word, so `"key word":` yields
// `key word:`.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func isLexSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// next returns the next word. ok is false once the line is exhausted.
// The whitespace character that terminates a word is consumed with it.
func (l *lexer) next() (word string, ok bool, err error) {
	for l.pos < len(l.src) && isLexSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return "", false, nil
	}

	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isLexSpace(c):
			l.pos++
			return b.String(), true, nil
		case c == '\'':
			l.pos++
			end := strings.IndexByte(l.src[l.pos:], '\'')
			if end < 0 {
				return "", false, errNoClosingQuotation
			}
			b.WriteString(l.src[l.pos : l.pos+end])
			l.pos += end + 1
		case c == '"':
			l.pos++
			if err := l.readDoubleQuoted(&b); err != nil {
				return "", false, err
			}
		case c == '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return "", false, errNoEscapedCharacter
			}
			b.WriteByte(l.src[l.pos])
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return b.String(), true, nil
}

// readDoubleQuoted consumes up to and including the closing quote.
func (l *lexer) readDoubleQuoted(b *strings.Builder) error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return errNoEscapedCharacter
			}
			if n := l.src[l.pos]; n != '"' && n != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(l.src[l.pos])
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return errNoClosingQuotation
}

// rest returns the unread remainder of the line.
func (l *lexer) rest() string {
	return l.src[l.pos:]
}
