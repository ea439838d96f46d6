// Package codec reads and writes database files that may be encrypted.
//
// The encryption is chosen by file extension: ".gpg" and ".asc" files go
// through the gpg binary, ".pwx" files use the native sealed format from
// pkg/crypto, and everything else is read as plain text.
package codec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forest6511/pw/pkg/crypto"
)

// File extensions recognised as encrypted.
const (
	ExtGPG    = ".gpg"
	ExtArmor  = ".asc"
	ExtSealed = ".pwx"
)

// DefaultGPGBinary is the gpg executable used when none is configured.
const DefaultGPGBinary = "gpg2"

// filePermission is used for every file written by a codec.
const filePermission = 0600

var (
	// ErrUnsupported indicates a codec cannot handle the requested operation.
	ErrUnsupported = errors.New("codec: unsupported operation")

	// ErrNoRecipient indicates GPG encryption was requested without a recipient.
	ErrNoRecipient = errors.New("codec: no gpg recipient configured")

	// ErrNoPassphrase indicates a sealed file needs a passphrase and none
	// could be obtained.
	ErrNoPassphrase = errors.New("codec: passphrase required for sealed file")
)

// Codec decrypts and encrypts a database file.
type Codec interface {
	// Decrypt returns the plaintext contents of the file at path.
	Decrypt(ctx context.Context, path string) ([]byte, error)

	// Encrypt replaces the file at path with plaintext, encrypted.
	Encrypt(ctx context.Context, path string, plaintext []byte) error
}

// PassphraseFunc supplies a passphrase on demand.
type PassphraseFunc func() ([]byte, error)

// Options configures the codecs returned by ForPath.
type Options struct {
	// GPGBinary is the gpg executable. Defaults to DefaultGPGBinary.
	GPGBinary string

	// GPGHomedir is passed as --homedir when set.
	GPGHomedir string

	// Recipient is required to encrypt GPG files.
	Recipient string

	// Passphrase unlocks sealed files. When empty, Prompt is asked.
	Passphrase []byte

	// Prompt is used when Passphrase is empty. Defaults to a terminal prompt.
	Prompt PassphraseFunc

	// KDF overrides the key derivation parameters for new sealed files.
	KDF crypto.KDFParams

	// Command builds gpg processes. Defaults to exec.CommandContext.
	Command CommandFunc
}

// IsEncrypted reports whether path names an encrypted file.
func IsEncrypted(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtGPG, ExtArmor, ExtSealed:
		return true
	}
	return false
}

// UnencryptedExt returns the extension the file would have once
// decrypted: "db.yaml.gpg" gives ".yaml", "db.pw" gives ".pw".
func UnencryptedExt(path string) string {
	if IsEncrypted(path) {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return filepath.Ext(path)
}

// ForPath returns the codec for the file at path.
func ForPath(path string, opts Options) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtGPG, ExtArmor:
		return NewGPG(opts), nil
	case ExtSealed:
		return NewSealed(opts), nil
	default:
		return Plain{}, nil
	}
}

// Plain reads and writes unencrypted files.
type Plain struct{}

// Decrypt implements Codec.
func (Plain) Decrypt(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Encrypt implements Codec.
func (Plain) Encrypt(_ context.Context, path string, plaintext []byte) error {
	return writeFile(path, plaintext)
}

// writeFile replaces path atomically via a temporary file in the same
// directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(filePermission); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
