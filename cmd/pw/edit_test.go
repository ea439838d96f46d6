package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/crypto"
)

// fakeEditor runs this test binary as the editor; the editor name selects
// what TestHelperProcess does to the file.
func fakeEditor(t *testing.T) {
	t.Helper()
	prev := editorCommand
	editorCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "PW_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() { editorCommand = prev })
}

// TestHelperProcess is not a real test; it is the editor started by
// fakeEditor.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("PW_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	mode, file := args[0], args[len(args)-1]

	switch mode {
	case "append":
		f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			os.Exit(3)
		}
		_, _ = f.WriteString("newkey newpass\n")
		_ = f.Close()
	case "break":
		_ = os.WriteFile(file, []byte("foo \"bar\n"), 0600)
	case "fail":
		os.Exit(1)
	}
	os.Exit(0)
}

// editableCopy copies the line fixture into a temp dir.
func editableCopy(t *testing.T) string {
	t.Helper()
	src, err := os.ReadFile(lineFixture)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "db.pw")
	require.NoError(t, os.WriteFile(path, src, 0600))
	return path
}

func backups(t *testing.T, path string) []string {
	t.Helper()
	matches, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	return matches
}

func TestEditAppends(t *testing.T) {
	isolate(t)
	fakeEditor(t)
	path := editableCopy(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)
	t.Setenv("PW_EDITOR", "append")

	stdout, stderr, code := runPW(t, "--edit", "-f", path)
	require.Equal(t, ExitOK, code, stderr)
	assert.Empty(t, stdout)

	edited, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(original)+"newkey newpass\n", string(edited))

	saved := backups(t, path)
	require.Len(t, saved, 1)
	backup, err := os.ReadFile(saved[0])
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	stdout, _, code = runPW(t, "-R", "-f", path, "newkey")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "newpass\n", stdout)
}

func TestEditNotModified(t *testing.T) {
	isolate(t)
	fakeEditor(t)
	path := editableCopy(t)
	t.Setenv("PW_EDITOR", "noop")

	stdout, stderr, code := runPW(t, "--edit", "-f", path)
	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "not modified\n", stdout)
	assert.Empty(t, backups(t, path))
}

func TestEditRejectsBrokenDatabase(t *testing.T) {
	isolate(t)
	fakeEditor(t)
	path := editableCopy(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)
	t.Setenv("PW_EDITOR", "break")

	_, stderr, code := runPW(t, "--edit", "-f", path)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "line 1")
	assert.Contains(t, stderr, "edited copy kept at")

	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged)
	assert.Empty(t, backups(t, path))
}

func TestEditSealed(t *testing.T) {
	isolate(t)
	fakeEditor(t)

	src, err := os.ReadFile(lineFixture)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "db.pw.pwx")
	sealed := codec.NewSealed(codec.Options{
		Passphrase: []byte("correct horse"),
		KDF:        crypto.KDFParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1},
	})
	require.NoError(t, sealed.Encrypt(context.Background(), path, src))

	t.Setenv("PW_EDITOR", "append")
	t.Setenv("PW_PASSPHRASE", "correct horse")

	_, stderr, code := runPW(t, "--edit", "-f", path)
	require.Equal(t, ExitOK, code, stderr)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "newpass")

	stdout, stderr, code := runPW(t, "-R", "-f", path, "newkey")
	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "newpass\n", stdout)
}

func TestEditErrors(t *testing.T) {
	gpgPath := filepath.Join(t.TempDir(), "db.pw.gpg")
	require.NoError(t, os.WriteFile(gpgPath, []byte("-----"), 0600))

	tests := []struct {
		name     string
		editor   string
		path     string
		expected string
	}{
		{name: "no editor", path: lineFixture, expected: "error: no editor set in PW_EDITOR environment variables\n"},
		{name: "missing file", editor: "noop", path: "MISSING", expected: "error: password store not found at 'MISSING'\n"},
		{name: "gpg without recipient", editor: "noop", path: gpgPath, expected: "error: no recipient set in PW_GPG_RECIPIENT environment variables\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			fakeEditor(t)
			t.Setenv("PW_EDITOR", tc.editor)

			_, stderr, code := runPW(t, "--edit", "-f", tc.path)
			assert.Equal(t, ExitError, code)
			assert.Equal(t, tc.expected, stderr)
		})
	}
}

func TestEditEditorFails(t *testing.T) {
	isolate(t)
	fakeEditor(t)
	path := editableCopy(t)
	t.Setenv("PW_EDITOR", "fail")

	_, stderr, code := runPW(t, "--edit", "-f", path)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "editor fail failed")
	assert.Empty(t, backups(t, path))
}
