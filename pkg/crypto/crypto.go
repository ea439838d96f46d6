// Package crypto provides the primitives behind sealed password files.
//
// A sealed file is encrypted with AES-256-GCM. The key is derived from a
// passphrase with Argon2id and then expanded with HKDF-SHA256, so the
// same passphrase never encrypts directly.
//
// # Example Usage
//
//	blob, err := crypto.Seal([]byte("passphrase"), plaintext, crypto.DefaultKDFParams())
//	plaintext, err := crypto.Open([]byte("passphrase"), blob)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Argon2id parameters following OWASP recommendations.
const (
	// Argon2Memory is the memory cost in KiB (64MB).
	Argon2Memory = 64 * 1024

	// Argon2Time is the number of iterations.
	Argon2Time = 3

	// Argon2Threads is the degree of parallelism.
	Argon2Threads = 4

	// KeyLength is the length of encryption keys in bytes (256 bits).
	KeyLength = 32

	// NonceLength is the length of GCM nonces in bytes (96 bits).
	NonceLength = 12

	// SaltLength is the length of the KDF salt in bytes.
	SaltLength = 16
)

// hkdfInfoEncryption separates the file key from other uses of the
// Argon2id output.
const hkdfInfoEncryption = "pw-sealed-encryption"

// Sentinel errors returned by crypto functions.
var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length, must be 32 bytes")

	// ErrInvalidNonceLength indicates the nonce is not 12 bytes.
	ErrInvalidNonceLength = errors.New("crypto: invalid nonce length, must be 12 bytes")

	// ErrDecryptionFailed indicates a wrong passphrase or corrupted data.
	ErrDecryptionFailed = errors.New("crypto: decryption failed, wrong passphrase or corrupted data")

	// ErrCiphertextTooShort indicates the ciphertext is shorter than the GCM tag.
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

	// ErrEmptyPassphrase indicates an empty passphrase was provided.
	ErrEmptyPassphrase = errors.New("crypto: passphrase cannot be empty")
)

// KDFParams are the Argon2id parameters stored in a sealed file header.
type KDFParams struct {
	Memory      uint32 `json:"memory"`      // KiB
	Iterations  uint32 `json:"iterations"`  // time cost
	Parallelism uint8  `json:"parallelism"` // threads
}

// DefaultKDFParams returns the OWASP-recommended parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Memory:      Argon2Memory,
		Iterations:  Argon2Time,
		Parallelism: Argon2Threads,
	}
}

// DeriveKey derives the 256-bit file key from a passphrase and salt.
func DeriveKey(passphrase, salt []byte, params KDFParams) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}

	master := argon2.IDKey(passphrase, salt, params.Iterations, params.Memory, params.Parallelism, KeyLength)
	defer SecureWipe(master)

	key := make([]byte, KeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfoEncryption)), key); err != nil {
		return nil, fmt.Errorf("crypto: failed to expand key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts plaintext with AES-256-GCM under a fresh random nonce.
// The authentication tag is appended to the ciphertext.
func Encrypt(key, plaintext []byte) (ciphertext []byte, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to generate nonce: %w", err)
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt verifies and decrypts ciphertext produced by Encrypt.
func Decrypt(key, ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create GCM: %w", err)
	}
	return gcm, nil
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// compiler optimization from removing the operation.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
