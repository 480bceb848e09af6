package auth

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func issuerAt(at time.Time) Issuer {
	return Issuer{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Now:    func() time.Time { return at },
	}
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	token, exp, err := issuerAt(issuedAt).Issue(" alice ", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), exp)

	claims, err := issuerAt(issuedAt.Add(30 * time.Minute)).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	token, _, err := issuerAt(issuedAt).Issue("alice", "")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		_, err := issuerAt(issuedAt.Add(2 * time.Hour)).Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other := issuerAt(issuedAt)
		other.Secret = []byte("other")
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := issuerAt(issuedAt).Verify("not.a.token")
		assert.Error(t, err)
	})

	t.Run("no secret", func(t *testing.T) {
		t.Parallel()
		_, err := Issuer{}.Verify(token)
		assert.ErrorIs(t, err, ErrNoSecret)
	})
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	t.Parallel()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuerAt(issuedAt).Verify(token)
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestIssueRequiresSecretAndUser(t *testing.T) {
	t.Parallel()

	_, _, err := Issuer{TTL: time.Hour}.Issue("alice", "")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, _, err = issuerAt(issuedAt).Issue("  ", "")
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestTokenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "token")
	_, err := LoadToken(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, SaveToken(path, "abc.def.ghi"))
	got, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)
}
