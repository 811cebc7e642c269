package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/records-portal/internal/model"
)

var (
	ErrNoToken   = errors.New("no session token")
	ErrExpired   = errors.New("session expired")
	ErrMalformed = errors.New("malformed session token")
)

// DecodeClaims reads the payload segment of an access token without checking
// its signature. The records API verifies every request it receives; the
// portal uses the claims for display and for filtering only.
func DecodeClaims(token string) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformed)
	}
	return claims, nil
}
