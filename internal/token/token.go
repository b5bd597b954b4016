// Package token issues and verifies signed session tokens.
//
// Sessions are HS256 JWTs carrying the subject id and name. They are not
// stored server-side; validity is purely a function of signature and expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microblog/internal/errs"
)

// Leeway tolerated when validating expiry, to absorb clock skew.
const leeway = 30 * time.Second

// Identity is the authenticated identity embedded in a session.
type Identity struct {
	UserID   int64
	Username string
}

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with an injected HS256 key.
type Service struct {
	signKey []byte
	ttl     time.Duration
}

// NewService constructs a token service. The key must be initialized before
// serving and is never mutated afterwards.
func NewService(signKey []byte, ttl time.Duration) *Service {
	return &Service{signKey: signKey, ttl: ttl}
}

// Issue creates a signed session token for the subject with the configured
// validity window computed from the current time.
func (s *Service) Issue(userID int64, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// Verify checks signature and expiry and returns the embedded identity.
// All failure reasons collapse into errs.ErrSessionInvalid; the distinction
// is logged by callers at most, never surfaced.
func (s *Service) Verify(tokenStr string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(leeway))
	if err != nil || !parsed.Valid {
		return Identity{}, errs.ErrSessionInvalid
	}
	if claims.UserID == 0 {
		return Identity{}, errs.ErrSessionInvalid
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
