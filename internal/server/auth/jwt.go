// Package auth contains the credential primitives used by the account
// service: signed session tokens, password hashing, and one-time-passcode
// generation.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linkup-social/linkup/internal/common"
)

// Claims carries the session payload: the account ID and display name,
// plus the registered expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"uid"`
	Name      string `json:"name"`
}

// TokenIssuer mints and verifies signed, time-bounded session tokens.
// The signing secret is process-wide configuration injected at construction.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
}

func NewTokenIssuer(secret []byte, validity time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, validity: validity}
}

// Issue returns an HS256-signed token embedding the account ID and display
// name, valid for the issuer's configured window.
func (i *TokenIssuer) Issue(accountID, name string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: accountID,
		Name:      name,
	})

	return token.SignedString(i.secret)
}

// Verify parses and validates a token string. Malformed, tampered, and
// expired tokens all yield common.ErrInvalidToken; callers do not need to
// distinguish them.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
