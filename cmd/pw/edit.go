package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/store"
)

// editorCommand builds the editor process; tests replace it.
var editorCommand = exec.CommandContext

var (
	errNoEditor    = errors.New("no editor set in PW_EDITOR environment variables")
	errNoRecipient = errors.New("no recipient set in PW_GPG_RECIPIENT environment variables")
)

// runEdit opens the database in PW_EDITOR and writes the result back,
// encrypted the same way as before. EDITOR is not consulted: editing a
// password file should be a conscious choice.
func runEdit(ctx context.Context, out io.Writer) error {
	editor := strings.Fields(cfg.Edit.Editor)
	if len(editor) == 0 {
		return errNoEditor
	}

	path := cfg.Store.Path
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("password store not found at '%s'", path)
		}
		return err
	}

	opts := codecOptions(cfg)
	c, err := codec.ForPath(path, opts)
	if err != nil {
		return err
	}
	if _, isGPG := c.(*codec.GPG); isGPG && opts.Recipient == "" {
		return errNoRecipient
	}

	original, err := c.Decrypt(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read password store: %w", err)
	}

	tmp, err := writeTempCopy(path, original)
	if err != nil {
		return err
	}
	keepTemp := false
	defer func() {
		if !keepTemp {
			_ = os.Remove(tmp)
		}
	}()

	logger.Debug(ctx, "launching editor", "editor", editor[0], "file", tmp)
	if err := launchEditor(ctx, editor, tmp); err != nil {
		return err
	}

	modified, err := os.ReadFile(tmp)
	if err != nil {
		return fmt.Errorf("failed to read edited file: %w", err)
	}
	if bytes.Equal(original, modified) {
		fmt.Fprintln(out, "not modified")
		return nil
	}

	if err := replaceDatabase(ctx, c, path, modified); err != nil {
		var parseErr *invalidDatabaseError
		if errors.As(err, &parseErr) {
			keepTemp = true
			return fmt.Errorf("%w (edited copy kept at %s)", err, tmp)
		}
		return err
	}
	return nil
}

// invalidDatabaseError reports new content that does not parse.
type invalidDatabaseError struct {
	err error
}

func (e *invalidDatabaseError) Error() string { return e.err.Error() }
func (e *invalidDatabaseError) Unwrap() error { return e.err }

// replaceDatabase encrypts content with c and writes it to path, after
// checking that it parses and keeping a backup of the current file.
// A database that does not parse is never written.
func replaceDatabase(ctx context.Context, c codec.Codec, path string, content []byte) error {
	if _, err := store.Parse(path, content); err != nil {
		return &invalidDatabaseError{err: err}
	}

	backup := ""
	if _, err := os.Stat(path); err == nil {
		if backup, err = writeBackup(path); err != nil {
			return err
		}
		logger.Debug(ctx, "backup written", "path", backup)
	}

	if err := c.Encrypt(ctx, path, content); err != nil {
		if backup != "" {
			return fmt.Errorf("failed to write password store (backup at %s): %w", backup, err)
		}
		return fmt.Errorf("failed to write password store: %w", err)
	}
	return nil
}

// writeTempCopy stores the decrypted database in a private temporary file
// whose extension keeps the editor's syntax highlighting working.
func writeTempCopy(path string, data []byte) (string, error) {
	f, err := os.CreateTemp("", "pw-*"+codec.UnencryptedExt(path))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := f.Name()

	if err := f.Chmod(0600); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func launchEditor(ctx context.Context, editor []string, file string) error {
	args := append(editor[1:len(editor):len(editor)], file)
	cmd := editorCommand(ctx, editor[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	editing.Store(true)
	defer editing.Store(false)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", editor[0], err)
	}
	return nil
}

// writeBackup copies the file at path, as stored on disk, next to it.
func writeBackup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	backup := fmt.Sprintf("%s.backup.%d", path, time.Now().Unix())
	if err := os.WriteFile(backup, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return filepath.Clean(backup), nil
}
