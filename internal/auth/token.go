package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the payload of the signed session cookie: nothing but the
// session id and the registered claims. All identity data stays server-side.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies the session-id tokens carried by the
// session cookie.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *TokenSigner) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "session",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the session id embedded in a valid token.
func (s *TokenSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("invalid session token")
	}

	return claims.SessionID, nil
}
