// Package signer issues and verifies the access/refresh tokens an environment
// signs with its secret key. Consumers are the authentication flows; this
// package only owns the signing mechanics.
package signer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two JWT lifetimes an environment issues.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims carried by issued tokens.
type Claims struct {
	Kind          TokenKind `json:"kind"`
	EnvironmentID string    `json:"environment_id"`
	jwt.RegisteredClaims
}

// Signer signs tokens for one environment. The secret key and expirations are
// immutable environment properties, so a Signer can be cached per environment.
type Signer struct {
	secretKey         []byte
	issuer            string
	accessExpiration  time.Duration
	refreshExpiration time.Duration
}

// New creates a signer bound to an environment's secret key and expirations.
func New(secretKey, environmentID string, accessExpiration, refreshExpiration time.Duration) *Signer {
	return &Signer{
		secretKey:         []byte(secretKey),
		issuer:            environmentID,
		accessExpiration:  accessExpiration,
		refreshExpiration: refreshExpiration,
	}
}

// Sign issues a token of the given kind for a subject (usually a user id).
func (s *Signer) Sign(kind TokenKind, subject string) (string, error) {
	expiration := s.accessExpiration
	if kind == TokenKindRefresh {
		expiration = s.refreshExpiration
	}

	now := time.Now().UTC()
	claims := Claims{
		Kind:          kind,
		EnvironmentID: s.issuer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims. Expired or foreign-key-signed
// tokens fail.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
