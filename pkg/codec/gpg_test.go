package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGPG records invocations and re-runs the test binary as a stand-in
// for gpg (see TestHelperProcess).
type fakeGPG struct {
	name string
	args []string
	mode string
}

func (f *fakeGPG) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	f.name = name
	f.args = args
	cs := append([]string{"-test.run=TestHelperProcess", "--", f.mode}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "PW_WANT_HELPER_PROCESS=1")
	return cmd
}

// TestHelperProcess is not a real test. It acts as gpg for fakeGPG.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("PW_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(3)
	}
	mode, gpgArgs := args[1], args[2:]

	switch mode {
	case "decrypt":
		fmt.Fprint(os.Stdout, "laptop alice 4l1c3\n")
	case "encrypt":
		var output string
		for i, a := range gpgArgs {
			if a == "--output" && i+1 < len(gpgArgs) {
				output = gpgArgs[i+1]
			}
		}
		data, _ := io.ReadAll(os.Stdin)
		if err := os.WriteFile(output, append([]byte("ENC:"), data...), 0600); err != nil {
			os.Exit(4)
		}
	case "fail":
		fmt.Fprint(os.Stderr, "gpg: decryption failed: No secret key")
		os.Exit(2)
	}
}

func TestGPGDecrypt(t *testing.T) {
	fake := &fakeGPG{mode: "decrypt"}
	g := NewGPG(Options{Command: fake.command})

	got, err := g.Decrypt(context.Background(), "/tmp/db.gpg")
	require.NoError(t, err)
	assert.Equal(t, "laptop alice 4l1c3\n", string(got))
	assert.Equal(t, DefaultGPGBinary, fake.name)
	assert.Equal(t, []string{"--use-agent", "--quiet", "--batch", "--yes", "--decrypt", "/tmp/db.gpg"}, fake.args)
}

func TestGPGDecryptHomedir(t *testing.T) {
	fake := &fakeGPG{mode: "decrypt"}
	g := NewGPG(Options{Command: fake.command, GPGBinary: "gpg", GPGHomedir: "/keys"})

	_, err := g.Decrypt(context.Background(), "db.gpg")
	require.NoError(t, err)
	assert.Equal(t, "gpg", fake.name)
	assert.Equal(t, []string{"--use-agent", "--quiet", "--batch", "--yes", "--homedir", "/keys", "--decrypt", "db.gpg"}, fake.args)
}

func TestGPGDecryptFailure(t *testing.T) {
	fake := &fakeGPG{mode: "fail"}
	g := NewGPG(Options{Command: fake.command})

	_, err := g.Decrypt(context.Background(), "db.gpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpg failed to decrypt")
	assert.Contains(t, err.Error(), "No secret key")
}

func TestGPGEncrypt(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		wantArmor bool
	}{
		{name: "binary", file: "db.gpg"},
		{name: "armored", file: "db.asc", wantArmor: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			fake := &fakeGPG{mode: "encrypt"}
			g := NewGPG(Options{Command: fake.command, Recipient: "alice@example.com"})

			require.NoError(t, g.Encrypt(context.Background(), path, []byte("data")))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "ENC:data", string(got))

			joined := strings.Join(fake.args, " ")
			assert.Equal(t, tc.wantArmor, strings.Contains(joined, "--armor"))
			assert.Contains(t, joined, "--recipient alice@example.com --output "+path+" --encrypt")
		})
	}
}

func TestGPGEncryptNoRecipient(t *testing.T) {
	fake := &fakeGPG{mode: "encrypt"}
	g := NewGPG(Options{Command: fake.command})

	err := g.Encrypt(context.Background(), "db.gpg", []byte("x"))
	assert.True(t, errors.Is(err, ErrNoRecipient))
	assert.Nil(t, fake.args, "gpg must not run without a recipient")
}
