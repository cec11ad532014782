package services

import (
	"errors"
	"fmt"
	"time"

	"centsible/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenClaims are the claims carried by an access token
type TokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenServiceInterface issues and validates access tokens
type TokenServiceInterface interface {
	Issue(userID uuid.UUID, email string) (token string, expiresAt time.Time, err error)
	Validate(token string) (*TokenClaims, error)
}

// tokenService implements TokenServiceInterface with HS256 JWTs
type tokenService struct {
	secret   []byte
	duration time.Duration
	issuer   string
}

// NewTokenService creates a token service
func NewTokenService(cfg config.AuthConfig) TokenServiceInterface {
	return &tokenService{
		secret:   []byte(cfg.TokenSecret),
		duration: cfg.TokenDuration,
		issuer:   cfg.Issuer,
	}
}

// Issue signs a new access token for the user
func (s *tokenService) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.duration)

	claims := TokenClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies an access token
func (s *tokenService) Validate(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
