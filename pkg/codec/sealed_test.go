package codec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest6511/pw/pkg/crypto"
)

func TestSealedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.pwx")
	ctx := context.Background()
	s := NewSealed(Options{Passphrase: []byte("correct horse"), KDF: testKDF})

	require.NoError(t, s.Encrypt(ctx, path, []byte("laptop alice 4l1c3\n")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, crypto.IsSealed(raw))
	assert.NotContains(t, string(raw), "4l1c3")

	got, err := NewSealed(Options{Passphrase: []byte("correct horse")}).Decrypt(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "laptop alice 4l1c3\n", string(got))
}

func TestSealedWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.pwx")
	ctx := context.Background()
	require.NoError(t, NewSealed(Options{Passphrase: []byte("right"), KDF: testKDF}).Encrypt(ctx, path, []byte("x")))

	_, err := NewSealed(Options{Passphrase: []byte("wrong")}).Decrypt(ctx, path)
	assert.True(t, errors.Is(err, crypto.ErrDecryptionFailed))
}

func TestSealedPromptsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.pwx")
	ctx := context.Background()

	calls := 0
	s := NewSealed(Options{
		KDF: testKDF,
		Prompt: func() ([]byte, error) {
			calls++
			return []byte("prompted"), nil
		},
	})

	require.NoError(t, s.Encrypt(ctx, path, []byte("data")))
	_, err := s.Decrypt(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSealedEmptyPrompt(t *testing.T) {
	s := NewSealed(Options{
		KDF:    testKDF,
		Prompt: func() ([]byte, error) { return nil, nil },
	})

	err := s.Encrypt(context.Background(), filepath.Join(t.TempDir(), "db.pwx"), []byte("x"))
	assert.True(t, errors.Is(err, ErrNoPassphrase))
}

func TestSealedDecryptPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.pwx")
	require.NoError(t, os.WriteFile(path, []byte("laptop alice pw"), 0600))

	_, err := NewSealed(Options{Passphrase: []byte("p")}).Decrypt(context.Background(), path)
	assert.True(t, errors.Is(err, crypto.ErrInvalidMagic))
}

func TestSealedDefaultKDF(t *testing.T) {
	s := NewSealed(Options{Passphrase: []byte("p")})
	assert.Equal(t, crypto.DefaultKDFParams(), s.kdf)
}
