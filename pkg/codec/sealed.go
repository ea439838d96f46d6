package codec

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/forest6511/pw/pkg/crypto"
)

// Sealed reads and writes files in the native passphrase format.
type Sealed struct {
	passphrase []byte
	prompt     PassphraseFunc
	kdf        crypto.KDFParams
}

// NewSealed creates a sealed codec from opts.
func NewSealed(opts Options) *Sealed {
	s := &Sealed{
		passphrase: opts.Passphrase,
		prompt:     opts.Prompt,
		kdf:        opts.KDF,
	}
	if s.prompt == nil {
		s.prompt = TerminalPrompt("Passphrase: ")
	}
	if s.kdf == (crypto.KDFParams{}) {
		s.kdf = crypto.DefaultKDFParams()
	}
	return s
}

// Decrypt implements Codec.
func (s *Sealed) Decrypt(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	passphrase, err := s.obtainPassphrase()
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.Open(passphrase, data)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return plaintext, nil
}

// Encrypt implements Codec.
func (s *Sealed) Encrypt(_ context.Context, path string, plaintext []byte) error {
	passphrase, err := s.obtainPassphrase()
	if err != nil {
		return err
	}

	sealed, err := crypto.Seal(passphrase, plaintext, s.kdf)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", path, err)
	}
	return writeFile(path, sealed)
}

// obtainPassphrase asks the prompt at most once per codec.
func (s *Sealed) obtainPassphrase() ([]byte, error) {
	if len(s.passphrase) > 0 {
		return s.passphrase, nil
	}

	passphrase, err := s.prompt()
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, ErrNoPassphrase
	}
	s.passphrase = passphrase
	return passphrase, nil
}

// TerminalPrompt returns a PassphraseFunc that reads a passphrase from the
// terminal without echo. The prompt is written to stderr so stdout stays
// clean for piping.
func TerminalPrompt(prompt string) PassphraseFunc {
	return func() ([]byte, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, ErrNoPassphrase
		}

		fmt.Fprint(os.Stderr, prompt)
		passphrase, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		return passphrase, nil
	}
}
