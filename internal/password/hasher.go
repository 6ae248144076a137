// Package password hashes and verifies user credentials.
//
// New hashes use argon2id. Verification also accepts bcrypt hashes so
// accounts created before the switch keep working; VerifyAndUpgrade lets
// callers re-hash those lazily at login.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// argon2id parameters (OWASP recommendation).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32
)

var ErrInvalidHash = errors.New("invalid password hash")

type Hasher struct{}

func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash produces a PHC-encoded argon2id hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches the encoded hash. A mismatch is
// (false, nil); a hash this package cannot parse is (false, ErrInvalidHash).
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(password, encoded)
	case isBcrypt(encoded):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, ErrInvalidHash
	default:
		return false, ErrInvalidHash
	}
}

// VerifyAndUpgrade verifies the password and, when the stored hash was
// produced by a deprecated scheme or weaker parameters, also returns a fresh
// hash under the current scheme. newHash is empty when no upgrade is needed.
func (h *Hasher) VerifyAndUpgrade(password, encoded string) (valid bool, newHash string, err error) {
	valid, err = h.Verify(password, encoded)
	if err != nil || !valid {
		return false, "", err
	}
	if !h.NeedsUpgrade(encoded) {
		return true, "", nil
	}
	newHash, err = h.Hash(password)
	if err != nil {
		return true, "", err
	}
	return true, newHash, nil
}

// NeedsUpgrade reports whether the hash should be re-computed under the
// current scheme and parameters.
func (h *Hasher) NeedsUpgrade(encoded string) bool {
	if !strings.HasPrefix(encoded, "$argon2id$") {
		return true
	}
	memory, time, threads, err := parseArgonParams(encoded)
	if err != nil {
		return true
	}
	return memory < argonMemory || time < argonTime || threads < argonThreads
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func parseArgonParams(encoded string) (memory, time uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, ErrInvalidHash
	}
	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &p); err != nil {
		return 0, 0, 0, ErrInvalidHash
	}
	if p == 0 || p > 255 {
		return 0, 0, 0, ErrInvalidHash
	}
	return memory, time, uint8(p), nil
}

func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}

	memory, time, threads, err := parseArgonParams(encoded)
	if err != nil {
		return false, err
	}
	// Refuse attacker-supplied hashes with pathological cost parameters.
	if memory > argonMemory*2 || time > argonTime*4 {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}
	if len(expected) == 0 || len(expected) > 512 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
