// Package crypto provides password hashing for stored credentials.
//
// Passwords are derived with PBKDF2-HMAC-SHA256 and a per-credential random
// salt. The stored string records everything needed to verify it later:
//
//	pbkdf2-sha256$<iterations>$<salt-hex>$<digest-hex>
//
// Keeping the iteration count in the stored value lets the work factor be
// raised later without invalidating existing hashes.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Algorithm is the identifier written as the first field of a stored hash.
	Algorithm = "pbkdf2-sha256"

	DefaultIterations = 1_000_000
	DefaultKeyLen     = 32
	SaltLen           = 16
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes and verifies passwords. Safe for concurrent use.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher creates a hasher. iterations <= 0 selects DefaultIterations.
// Tests pass a small count to stay fast.
func NewPasswordHasher(iterations int) *PasswordHasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PasswordHasher{iterations: iterations}
}

// Iterations returns the work factor used for new hashes.
func (h *PasswordHasher) Iterations() int {
	return h.iterations
}

// Hash derives a new stored hash for plaintext with a fresh random salt.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(plaintext), salt, h.iterations, DefaultKeyLen, sha256.New)

	return strings.Join([]string{
		Algorithm,
		strconv.Itoa(h.iterations),
		hex.EncodeToString(salt),
		hex.EncodeToString(digest),
	}, "$"), nil
}

// Verify reports whether plaintext matches stored.
// A stored value that cannot be parsed returns ErrMalformedHash; a simple
// mismatch returns (false, nil).
func (h *PasswordHasher) Verify(plaintext, stored string) (bool, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != Algorithm {
		return false, ErrMalformedHash
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false, ErrMalformedHash
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return false, ErrMalformedHash
	}

	want, err := hex.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := pbkdf2.Key([]byte(plaintext), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// DeriveHex runs PBKDF2-HMAC-SHA256 over password with a hex-encoded salt and
// returns the derived key as hex. Zero iterations or keyLen select the defaults.
func DeriveHex(password, saltHex string, iterations, keyLen int) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("invalid salt hex: %w", err)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if keyLen <= 0 {
		keyLen = DefaultKeyLen
	}

	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)), nil
}
