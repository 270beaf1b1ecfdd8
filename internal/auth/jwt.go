// Package auth provides password hashing, signed session tokens and the
// middleware that gates every non-public route.
//
// SESSION FLOW OVERVIEW:
// 1. User submits the login (or registration) form
// 2. The service verifies the password hash against the stored one
// 3. The handler issues a signed session token and stores it in an HttpOnly cookie
// 4. On subsequent requests, RequireSession reads the cookie, validates the
//    token, loads the user and puts it in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"42","jti":"cv37rs3pp9olc6atsptg","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The signing key is normally generated fresh at process start (GenerateSecret),
// so restarting the server logs everybody out.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/sakif/todolist/internal/model"
)

const (
	issuer = "todolist"

	// SessionLifetime bounds how long a session token stays valid.
	SessionLifetime = 24 * time.Hour
)

// TokenService handles session token creation and validation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data — see GenerateSecret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// GenerateSecret returns 32 bytes from crypto/rand, hex encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// claims is the JWT payload. "sub" (Subject) carries the user's numeric ID
// in decimal; "jti" is a unique token ID from xid.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given identity, valid for
// SessionLifetime.
func (s *TokenService) Issue(subject model.Identifiable) (string, error) {
	return s.IssueWithDuration(subject, SessionLifetime)
}

// IssueWithDuration creates a token with a custom expiry duration.
// Used in tests (a negative duration yields an already-expired token).
func (s *TokenService) IssueWithDuration(subject model.Identifiable, d time.Duration) (string, error) {
	if subject == nil {
		return "", errors.New("auth: cannot issue a session for a nil subject")
	}
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(subject.Identity(), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token and returns the user ID it
// was issued for.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}

	return userID, nil
}
