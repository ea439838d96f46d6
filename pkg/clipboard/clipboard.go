// Package clipboard copies text to the system clipboard by running the
// platform's clipboard tool.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable indicates no clipboard tool could be found.
var ErrUnavailable = errors.New("clipboard: no clipboard tool available")

// Clipboard receives copied text.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// tool is one clipboard program and its arguments.
type tool struct {
	name string
	args []string
}

// linuxTools are tried in order. wl-copy is only used under Wayland.
var linuxTools = []tool{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
}

// System copies through pbcopy, wl-copy, xclip, xsel or clip.
type System struct {
	// LookPath finds executables. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// Command builds the process. Defaults to exec.CommandContext.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd

	// GOOS overrides runtime.GOOS.
	GOOS string

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(key string) string
}

// Copy implements Clipboard.
func (s System) Copy(ctx context.Context, text string) error {
	t, err := s.find()
	if err != nil {
		return err
	}

	command := s.Command
	if command == nil {
		command = exec.CommandContext
	}

	cmd := command(ctx, t.name, t.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", t.name, err)
	}
	return nil
}

// find picks the clipboard tool for the current platform.
func (s System) find() (tool, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	switch goos {
	case "darwin":
		return tool{name: "pbcopy"}, nil
	case "windows":
		return tool{name: "clip"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		for _, t := range linuxTools {
			if t.name == "wl-copy" && getenv("WAYLAND_DISPLAY") == "" {
				continue
			}
			if _, err := lookPath(t.name); err == nil {
				return t, nil
			}
		}
		return tool{}, fmt.Errorf("%w: install xclip, xsel or wl-clipboard", ErrUnavailable)
	default:
		return tool{}, fmt.Errorf("%w: not supported on %s", ErrUnavailable, goos)
	}
}
