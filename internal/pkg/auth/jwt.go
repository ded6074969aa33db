package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/env"
)

const (
	TokenType        = "bearer"
	DefaultTokenLife = 30 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the user identity. Subject holds the email.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenLife
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewManagerFromEnv reads JWT_SECRET and JWT_EXPIRE_MINUTES.
func NewManagerFromEnv() (*Manager, error) {
	secret := env.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	minutes := env.GetInt("JWT_EXPIRE_MINUTES", int(DefaultTokenLife/time.Minute))
	return NewManager(secret, time.Duration(minutes)*time.Minute), nil
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// NewTokenResponse issues a token for user and wraps it for the client.
func (m *Manager) NewTokenResponse(user *models.User) (*TokenResponse, error) {
	token, err := m.Issue(user)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresIn:   int64(m.ttl / time.Second),
		User:        user,
	}, nil
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
