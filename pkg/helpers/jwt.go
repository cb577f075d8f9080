package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only failure Parse exposes. Bad signature,
// malformed structure, and expiry all collapse into it so callers cannot
// learn which check rejected the token.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and verifies bearer tokens with a symmetric key.
// The key is fixed at construction and held for the process lifetime;
// inject the manager instead of reaching for a global.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate issues a signed token for the subject with a role claim,
// issued-at now and expiry now + TTL. Subject and role must be non-empty.
func (m *JWTManager) Generate(subject, role string) (string, time.Time, error) {
	if subject == "" || role == "" {
		return "", time.Time{}, errors.New("subject and role are required")
	}
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Parse verifies signature, structure, and expiry.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
