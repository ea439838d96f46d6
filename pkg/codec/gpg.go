package codec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandFunc builds an external command. It matches exec.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// GPG runs the gpg binary to decrypt and encrypt files.
type GPG struct {
	binary    string
	homedir   string
	recipient string
	command   CommandFunc
}

// NewGPG creates a GPG codec from opts.
func NewGPG(opts Options) *GPG {
	g := &GPG{
		binary:    opts.GPGBinary,
		homedir:   opts.GPGHomedir,
		recipient: opts.Recipient,
		command:   opts.Command,
	}
	if g.binary == "" {
		g.binary = DefaultGPGBinary
	}
	if g.command == nil {
		g.command = exec.CommandContext
	}
	return g
}

// baseArgs are shared by every gpg invocation.
func (g *GPG) baseArgs() []string {
	args := []string{"--use-agent", "--quiet", "--batch", "--yes"}
	if g.homedir != "" {
		args = append(args, "--homedir", g.homedir)
	}
	return args
}

// Decrypt implements Codec.
func (g *GPG) Decrypt(ctx context.Context, path string) ([]byte, error) {
	args := append(g.baseArgs(), "--decrypt", path)

	var stdout, stderr bytes.Buffer
	cmd := g.command(ctx, g.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, gpgError("decrypt", err, &stderr)
	}
	return stdout.Bytes(), nil
}

// Encrypt implements Codec. Files ending in ".asc" are ASCII-armored.
func (g *GPG) Encrypt(ctx context.Context, path string, plaintext []byte) error {
	if g.recipient == "" {
		return ErrNoRecipient
	}

	args := g.baseArgs()
	if strings.EqualFold(filepath.Ext(path), ExtArmor) {
		args = append(args, "--armor")
	}
	args = append(args, "--recipient", g.recipient, "--output", path, "--encrypt")

	var stderr bytes.Buffer
	cmd := g.command(ctx, g.binary, args...)
	cmd.Stdin = bytes.NewReader(plaintext)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return gpgError("encrypt", err, &stderr)
	}
	return nil
}

func gpgError(op string, err error, stderr *bytes.Buffer) error {
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("gpg failed to %s: %w: %s", op, err, msg)
	}
	return fmt.Errorf("gpg failed to %s: %w", op, err)
}
