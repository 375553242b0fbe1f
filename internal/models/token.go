package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of an anonymous session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
