// Package cli provides shared utilities for the pw commands: query
// result rendering and key pattern expansion.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/forest6511/pw/internal/logging"
	"github.com/forest6511/pw/pkg/clipboard"
	"github.com/forest6511/pw/pkg/entry"
	"github.com/forest6511/pw/pkg/search"
)

// Mode selects how secrets are shown.
type Mode int

const (
	// ModeCopy copies the first result's secret to the clipboard.
	ModeCopy Mode = iota
	// ModeEcho prints passwords inline.
	ModeEcho
	// ModeRaw prints one secret per line and nothing else.
	ModeRaw
)

// String returns the flag name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeEcho:
		return "echo"
	case ModeRaw:
		return "raw"
	default:
		return "copy"
	}
}

const (
	notesIndent    = "   "
	fieldSeparator = " | "
	moreMarker     = " (...)"
)

// RenderOptions control Render.
type RenderOptions struct {
	Mode Mode

	// User selects the username instead of the password.
	User bool

	// NoPasswords hides secrets in copy and echo mode.
	NoPasswords bool

	// Color enables ANSI styling.
	Color bool

	// Clipboard receives the secret in copy mode.
	Clipboard clipboard.Clipboard

	Logger logging.Logger
}

type styles struct {
	match    *color.Color
	password *color.Color
	success  *color.Color
	failure  *color.Color
}

func newStyles(enabled bool) styles {
	s := styles{
		match:    color.New(color.FgYellow, color.Bold),
		password: color.New(color.FgRed, color.Bold),
		success:  color.New(color.FgGreen, color.Bold, color.ReverseVideo),
		failure:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{s.match, s.password, s.success, s.failure} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Render writes the search results to w.
//
// Each result is printed as "key: user", followed by the password in echo
// mode or a clipboard marker for the first result in copy mode. The notes
// of the first result follow on indented lines; other results show only
// the first line of their notes.
func Render(ctx context.Context, w io.Writer, results []entry.Entry, q search.Query, opts RenderOptions) error {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	if opts.Mode == ModeRaw {
		for _, e := range results {
			if _, err := fmt.Fprintln(w, secret(e, opts.User)); err != nil {
				return err
			}
		}
		return nil
	}

	st := newStyles(opts.Color)
	keyPattern := entry.NormalizeKey(q.Key)

	var out strings.Builder
	for i, e := range results {
		out.WriteString(Highlight(e.Key, keyPattern, st.match))
		if e.User != "" {
			out.WriteString(": ")
			out.WriteString(Highlight(e.User, q.User, st.match))
		}

		if !opts.NoPasswords {
			switch {
			case opts.Mode == ModeEcho && !opts.User:
				out.WriteString(fieldSeparator)
				out.WriteString(st.password.Sprint(e.Password))
			case opts.Mode == ModeCopy && i == 0:
				out.WriteString(fieldSeparator)
				out.WriteString(copyMarker(ctx, e, opts, st))
			}
		}

		if lines := e.NoteLines(); lines != nil {
			if i == 0 {
				for _, line := range lines {
					out.WriteString("\n")
					out.WriteString(notesIndent)
					out.WriteString(line)
				}
			} else {
				out.WriteString(fieldSeparator)
				out.WriteString(lines[0])
				if len(lines) > 1 {
					out.WriteString(moreMarker)
				}
			}
		}
		out.WriteString("\n")
	}

	text := strings.TrimRight(out.String(), " \t\r\n")
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// copyMarker copies the secret of e and returns the text shown in its
// place.
func copyMarker(ctx context.Context, e entry.Entry, opts RenderOptions, st styles) string {
	what := "PASSWORD"
	if opts.User {
		what = "USERNAME"
	}

	if opts.Clipboard == nil {
		return st.failure.Sprint("*** CLIPBOARD NOT AVAILABLE ***")
	}
	if err := opts.Clipboard.Copy(ctx, secret(e, opts.User)); err != nil {
		opts.Logger.Warn(ctx, "failed to copy to clipboard", "err", err)
		return st.failure.Sprint("*** CLIPBOARD NOT AVAILABLE ***")
	}
	return st.success.Sprintf("*** %s COPIED TO CLIPBOARD ***", what)
}

func secret(e entry.Entry, user bool) string {
	if user {
		return e.User
	}
	return e.Password
}

// Highlight styles every occurrence of pattern in s.
func Highlight(s, pattern string, style *color.Color) string {
	if pattern == "" {
		return s
	}
	return strings.Join(strings.Split(s, pattern), style.Sprint(pattern))
}
