// Package auth — password hashing utilities.
//
// WHY PBKDF2-SHA256?
// PBKDF2 runs HMAC-SHA256 many thousands of times over the password and a
// random salt. Like bcrypt, the point is to be slow: cheap for one login,
// ruinous for someone trying billions of guesses.
//
// Every hash gets its own random salt, so two users with the same password
// still get different hashes and precomputed rainbow tables are useless.
//
// Hash format (self-describing, one string per user):
//
//	pbkdf2:sha256:600000$<salt>$<hex digest>
//	       ^      ^       ^      ^
//	       |      |       |      32-byte derived key, hex encoded
//	       |      |       random salt
//	       |      iteration count
//	       hash function
//
// This is the layout werkzeug's generate_password_hash produces, so password
// hashes already stored by the previous deployment keep working.
package auth

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
	// defaultIterations follows the current OWASP recommendation for
	// PBKDF2-HMAC-SHA256.
	defaultIterations = 600000

	// legacyIterations applies to hashes written as "pbkdf2:sha256$..." with no
	// explicit count — the older werkzeug default.
	legacyIterations = 260000

	keyLength = sha256.Size
)

// ErrPasswordMismatch is returned by Verify when the password is wrong.
// Callers check for it with errors.Is to tell "wrong password" apart from
// "the stored hash is corrupt".
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService provides PBKDF2 hashing and verification.
//
// It's a struct (not free functions) so that the iteration count can be
// injected in tests — hashing 600k rounds per test case adds up quickly.
type PasswordService struct {
	iterations int
}

// NewPasswordService creates a PasswordService with the default iteration count.
func NewPasswordService() *PasswordService {
	return &PasswordService{iterations: defaultIterations}
}

// NewPasswordServiceForTest creates a PasswordService with a custom iteration
// count. Use a small number (e.g. 1000) in tests in other packages.
//
// Do NOT use in production — low counts are far too weak.
func NewPasswordServiceForTest(iterations int) *PasswordService {
	return &PasswordService{iterations: iterations}
}

// Hash derives a salted hash of plaintext. The plaintext itself is never
// part of the output.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	// rand.Text returns 26 characters from crypto/rand (base32 alphabet),
	// i.e. 130 bits of salt.
	salt := rand.Text()

	digest := pbkdf2.Key([]byte(plaintext), []byte(salt), p.iterations, keyLength, sha256.New)

	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", p.iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify checks whether plaintext matches a stored hash.
//
// Returns nil on a match, ErrPasswordMismatch on a wrong password, and a
// different error if the stored hash can't be parsed.
//
// TIMING SAFETY:
// subtle.ConstantTimeCompare takes the same time whether the first byte or
// the last byte differs, so response timing leaks nothing about the hash.
func (p *PasswordService) Verify(hash, plaintext string) error {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return fmt.Errorf("auth: malformed password hash")
	}
	method, salt, wantHex := parts[0], parts[1], parts[2]

	iterations, err := parseMethod(method)
	if err != nil {
		return err
	}

	want, err := hex.DecodeString(wantHex)
	if err != nil {
		return fmt.Errorf("auth: decoding password hash: %w", err)
	}

	got := pbkdf2.Key([]byte(plaintext), []byte(salt), iterations, len(want), sha256.New)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// parseMethod reads "pbkdf2:sha256[:iterations]" and returns the iteration count.
func parseMethod(method string) (int, error) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || fields[0] != "pbkdf2" || fields[1] != "sha256" {
		return 0, fmt.Errorf("auth: unsupported password hash method %q", method)
	}
	if len(fields) == 2 {
		return legacyIterations, nil
	}

	iterations, err := strconv.Atoi(fields[2])
	if err != nil || iterations <= 0 {
		return 0, fmt.Errorf("auth: invalid iteration count in %q", method)
	}
	return iterations, nil
}
