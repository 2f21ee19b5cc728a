// Package common contains shared constants and sentinel errors used across
// TaskHub components.
package common

// AccessTokenCookieName is the cookie used to carry the access token.
// The Authorization header ("Bearer <token>") is the fallback transport;
// the cookie is checked first.
const AccessTokenCookieName = "accessToken"

// Roles a user can carry. RoleAdmin passes every ownership check.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
