// Package auth implements the credential primitives of the server: a signed
// token codec (HS256 JWT) and a bcrypt password hasher. Both are pure and do
// no I/O.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/taskhub/internal/common"
)

// Claims carries the registered claims plus the subject user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken issues a signed token for userID that expires after
// validityDuration. The issued-at claim is set to the current server time.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString against secretKey and returns the
// embedded user ID.
//
// Failures map onto the shared sentinels: common.ErrTokenExpired once the
// expiry has passed, common.ErrMalformedToken for structural or signature
// damage, common.ErrInvalidToken for anything else. Verification uses the
// server clock with no leeway.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", common.ErrMalformedToken
		default:
			return "", common.ErrInvalidToken
		}
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
