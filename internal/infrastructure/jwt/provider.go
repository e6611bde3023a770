package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/go-verification-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identify the service calling the verification API.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 bearer tokens issued to upstream services.
type Verifier struct {
	publicKey *rsa.PublicKey
}

// NewVerifierFromFile reads a PEM-encoded RSA public key.
func NewVerifierFromFile(path string) (*Verifier, error) {
	if path == "" {
		return nil, errors.New("no public key path configured")
	}
	pubBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return NewVerifier(pubKey), nil
}

func NewVerifier(pub *rsa.PublicKey) *Verifier {
	return &Verifier{publicKey: pub}
}

// Verify parses tokenStr and returns its claims. Tokens without an expiry are rejected.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.publicKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims, nil
}
