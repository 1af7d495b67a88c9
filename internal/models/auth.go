package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JWTClaims is the access-token payload. Besides the identity it carries
// the profile fields the client renders without a fresh fetch, which is why
// self-service profile edits must reissue the token.
type JWTClaims struct {
	UserID       string   `json:"userId"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	Avatar       string   `json:"avatar"`
	UserCategory Category `json:"userCategory"`
	jwt.RegisteredClaims
}
