// Package auth issues and verifies the signed tokens that carry a user's
// stable id. Portfolios are keyed by that id in every journal.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret  = errors.New("auth secret is not configured")
	ErrNoSubject = errors.New("token has no user id")
)

const issuer = "tracker"

type Claims struct {
	Email string `json:"email,omitempty"`

	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c Claims) UserID() string { return c.Subject }

// Issuer signs HS256 tokens. Now defaults to time.Now.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue signs a token for userID.
func (i Issuer) Issue(userID, email string) (token string, expiresAt time.Time, err error) {
	if len(i.Secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, ErrNoSubject
	}

	now := i.now()
	expiresAt = now.Add(i.TTL)
	claims := Claims{
		Email: strings.TrimSpace(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// Verify checks the signature, expiry and subject of token.
func (i Issuer) Verify(token string) (Claims, error) {
	if len(i.Secret) == 0 {
		return Claims{}, ErrNoSecret
	}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.Secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if strings.TrimSpace(c.Subject) == "" {
		return Claims{}, ErrNoSubject
	}
	return *c, nil
}

// SaveToken writes token to path, readable by the owner only.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// LoadToken reads a token written by SaveToken. A missing file returns
// an error satisfying errors.Is(err, fs.ErrNotExist).
func LoadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
