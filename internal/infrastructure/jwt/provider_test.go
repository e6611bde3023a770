package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-verification-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func sign(t *testing.T, k *rsa.PrivateKey, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(k)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		Scope: "verification",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "signup-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestNewVerifierFromFile(t *testing.T) {
	k := newKey(t)
	pubBytes, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), 0600))

	v, err := NewVerifierFromFile(path)
	require.NoError(t, err)

	claims, err := v.Verify(sign(t, k, jwt.SigningMethodRS256, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "signup-service", claims.Subject)
	assert.Equal(t, "verification", claims.Scope)
}

func TestNewVerifierFromFile_Errors(t *testing.T) {
	_, err := NewVerifierFromFile("")
	assert.Error(t, err)

	_, err = NewVerifierFromFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0600))
	_, err = NewVerifierFromFile(garbage)
	assert.Error(t, err)
}

func TestVerify_Rejects(t *testing.T) {
	k := newKey(t)
	v := NewVerifier(&k.PublicKey)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":     "not-a-token",
		"expired":     sign(t, k, jwt.SigningMethodRS256, expired),
		"no expiry":   sign(t, k, jwt.SigningMethodRS256, noExpiry),
		"other key":   sign(t, newKey(t), jwt.SigningMethodRS256, validClaims()),
		"hmac method": hmacToken,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}
