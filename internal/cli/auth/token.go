// Package auth декодирует JWT-сессию, выданную API архива при входе.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims — полезная нагрузка токена API архива.
type Claims struct {
	Login string `json:"login"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session describes the signed-in user as seen by the client.
type Session struct {
	Token     string
	UserID    string
	Login     string
	Role      string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ParseSession читает claims без проверки подписи: подпись проверяет сервер,
// клиенту нужны только логин, роль и срок действия.
func ParseSession(token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	s := &Session{
		Token:  token,
		UserID: claims.Subject,
		Login:  claims.Login,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// IssueToken signs claims with HS256. Used by the stub API and tests.
func IssueToken(secret, userID, login, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Login: login,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken проверяет подпись и срок действия (сторона сервера).
func VerifyToken(secret, token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
