package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account kind carried in the login response and token.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the two roles the portal serves.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// LoginRequest is both the login form and the body posted to /login/.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"notblank"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
}

// TokenClaims is the access token payload. It is decoded without signature
// verification and only drives presentation.
type TokenClaims struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Auth errors
var (
	ErrInvalidRole = errors.New("invalid user role")
)
