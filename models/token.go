package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the payload of a session token.
//
// Only the registered claims are used: iss, sub (the user id), iat and exp.
// The token is self-contained; nothing about it is stored server-side, so a
// token stays valid until it expires.
type TokenClaims struct {
	jwt.RegisteredClaims
}
