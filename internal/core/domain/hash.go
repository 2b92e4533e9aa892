package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ContentHash is the raw SHA-256 digest of an uploaded file.
type ContentHash [sha256.Size]byte

// ParseContentHash accepts exactly 64 lowercase hex characters.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	if len(s) != hex.EncodedLen(sha256.Size) {
		return h, fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidHash, hex.EncodedLen(sha256.Size), len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return h, fmt.Errorf("%w: invalid character %q at %d", ErrInvalidHash, c, i)
		}
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return h, nil
}

// ContentHashFromBytes copies a raw digest, as stored in the registry.
func ContentHashFromBytes(b []byte) (ContentHash, error) {
	var h ContentHash
	if len(b) != sha256.Size {
		return h, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, sha256.Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashReader streams r through SHA-256.
func HashReader(r io.Reader) (ContentHash, error) {
	var h ContentHash
	digest := sha256.New()
	if _, err := io.Copy(digest, r); err != nil {
		return h, err
	}
	copy(h[:], digest.Sum(nil))
	return h, nil
}

// HashFile hashes the file at path.
func HashFile(path string) (ContentHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return ContentHash{}, err
	}
	defer f.Close()
	return HashReader(f)
}

// Bytes returns the raw digest.
func (h ContentHash) Bytes() []byte {
	return h[:]
}

// Hex returns the lowercase hex form used on the wire.
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Base64 returns the form expected by the x-amz-checksum-sha256 field.
func (h ContentHash) Base64() string {
	return base64.StdEncoding.EncodeToString(h[:])
}

func (h ContentHash) String() string {
	return h.Hex()
}
