/*
Package auth extracts the acting tenant and user from signed tokens.

PURPOSE:
  Every core call operates on behalf of a company and a user. That
  identity travels as an explicit AuthContext value - never ambient
  state - decoded once at the HTTP boundary from an HS256 JWT.

SEE ALSO:
  - api: Middleware that performs the extraction per request
*/
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// AUTH CONTEXT
// =============================================================================

// AuthContext identifies the acting company and user for one core call.
type AuthContext struct {
	CompanyID string
	UserID    string
}

var (
	// ErrInvalidToken is returned for malformed, expired, or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingClaims is returned when a valid token lacks identity claims.
	ErrMissingClaims = errors.New("token missing company or user claim")
)

// Claims is the JWT payload carrying the identity.
type Claims struct {
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

// =============================================================================
// DECODE / SIGN
// =============================================================================

// Decode verifies an HS256 token and extracts the AuthContext.
func Decode(tokenString string, secret []byte) (AuthContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return AuthContext{}, ErrInvalidToken
	}
	if claims.CompanyID == "" || claims.UserID == "" {
		return AuthContext{}, ErrMissingClaims
	}

	return AuthContext{CompanyID: claims.CompanyID, UserID: claims.UserID}, nil
}

// Sign mints a token for the given identity. Used by tests and the dev CLI.
func Sign(ac AuthContext, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		CompanyID: ac.CompanyID,
		UserID:    ac.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
