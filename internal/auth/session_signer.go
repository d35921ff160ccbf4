package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed portal session id.
const SessionCookieName = "sphere_session"

// SessionClaims is the payload of the portal session cookie. It carries only
// an opaque id; the backend token never leaves the server.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionSigner mints and validates session cookies.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionSigner creates a signer with the given secret and cookie lifetime.
func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL is the lifetime of issued cookies.
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// NewSessionID generates a fresh opaque session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Sign issues a cookie value for sessionID.
func (s *SessionSigner) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a cookie value and returns its claims.
func (s *SessionSigner) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session cookie")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, errors.New("invalid session id")
	}

	return claims, nil
}
