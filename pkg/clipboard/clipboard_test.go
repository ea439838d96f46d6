package clipboard

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPathFor(available ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		available []string
		env       map[string]string
		expected  string
		wantErr   bool
	}{
		{name: "darwin", goos: "darwin", expected: "pbcopy"},
		{name: "windows", goos: "windows", expected: "clip"},
		{name: "linux xclip", goos: "linux", available: []string{"xclip", "xsel"}, expected: "xclip"},
		{name: "linux xsel", goos: "linux", available: []string{"xsel"}, expected: "xsel"},
		{name: "wayland", goos: "linux", available: []string{"wl-copy", "xclip"}, env: map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, expected: "wl-copy"},
		{name: "wl-copy ignored without wayland", goos: "linux", available: []string{"wl-copy", "xclip"}, expected: "xclip"},
		{name: "linux nothing installed", goos: "linux", wantErr: true},
		{name: "unsupported", goos: "plan9", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := System{GOOS: tc.goos, LookPath: lookPathFor(tc.available...), Getenv: env(tc.env)}
			got, err := s.find()
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.name)
		})
	}
}

func TestCopyRunsTool(t *testing.T) {
	var gotName string
	var gotArgs []string
	s := System{
		GOOS:     "linux",
		LookPath: lookPathFor("xclip"),
		Getenv:   env(nil),
		Command: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			gotName, gotArgs = name, args
			return exec.CommandContext(ctx, "true")
		},
	}

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	require.NoError(t, s.Copy(context.Background(), "secret"))
	assert.Equal(t, "xclip", gotName)
	assert.Equal(t, []string{"-selection", "clipboard"}, gotArgs)
}

func TestCopyUnavailable(t *testing.T) {
	s := System{GOOS: "linux", LookPath: lookPathFor(), Getenv: env(nil)}
	err := s.Copy(context.Background(), "secret")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
