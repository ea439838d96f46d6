package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MagicNumber starts every sealed file: "PW_SEAL1".
var MagicNumber = [8]byte{'P', 'W', '_', 'S', 'E', 'A', 'L', '1'}

// FormatVersion is the current sealed file format version.
const FormatVersion = 1

// maxHeaderLength bounds the JSON header of a sealed file.
const maxHeaderLength = 64 * 1024

var (
	// ErrInvalidMagic indicates the data is not a sealed file.
	ErrInvalidMagic = errors.New("crypto: not a sealed file (magic number mismatch)")

	// ErrUnsupportedVersion indicates a sealed file from a newer format.
	ErrUnsupportedVersion = errors.New("crypto: unsupported sealed file version")

	// ErrInvalidHeader indicates a header with unusable KDF parameters or nonce.
	ErrInvalidHeader = errors.New("crypto: invalid sealed file header")
)

// Header is the plaintext metadata of a sealed file.
type Header struct {
	Version int       `json:"version"`
	KDF     KDFParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
}

// Seal encrypts plaintext under passphrase and returns the sealed file
// contents: magic, 4-byte big-endian header length, JSON header,
// ciphertext.
func Seal(passphrase, plaintext []byte, params KDFParams) ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate salt: %w", err)
	}

	key, err := DeriveKey(passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	defer SecureWipe(key)

	ciphertext, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	header := &Header{Version: FormatVersion, KDF: params, Salt: salt, Nonce: nonce}
	if err := writeHeader(&buf, header); err != nil {
		return nil, err
	}
	buf.Write(ciphertext)
	return buf.Bytes(), nil
}

// Open decrypts the contents of a sealed file.
func Open(passphrase, sealed []byte) ([]byte, error) {
	r := bytes.NewReader(sealed)
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(passphrase, header.Salt, header.KDF)
	if err != nil {
		return nil, err
	}
	defer SecureWipe(key)

	ciphertext := sealed[len(sealed)-r.Len():]
	return Decrypt(key, ciphertext, header.Nonce)
}

// IsSealed reports whether data starts with the sealed file magic number.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, MagicNumber[:])
}

func writeHeader(w io.Writer, header *Header) error {
	if _, err := w.Write(MagicNumber[:]); err != nil {
		return fmt.Errorf("crypto: failed to write magic number: %w", err)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("crypto: failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, uint32(len(headerJSON))); err != nil {
		return fmt.Errorf("crypto: failed to write header length: %w", err)
	}

	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("crypto: failed to write header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (*Header, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, ErrInvalidMagic
	}
	if magic != MagicNumber {
		return nil, ErrInvalidMagic
	}

	var headerLen uint32
	if err := binary.Read(r, binary.BigEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("crypto: failed to read header length: %w", err)
	}
	if headerLen > maxHeaderLength {
		return nil, fmt.Errorf("crypto: header too large: %d bytes", headerLen)
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("crypto: failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("crypto: failed to unmarshal header: %w", err)
	}

	if header.Version > FormatVersion {
		return nil, fmt.Errorf("%w: got %d, max supported %d",
			ErrUnsupportedVersion, header.Version, FormatVersion)
	}
	if header.KDF.Iterations == 0 || header.KDF.Parallelism == 0 || len(header.Nonce) != NonceLength {
		return nil, ErrInvalidHeader
	}
	return &header, nil
}
