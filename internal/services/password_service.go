package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// PasswordServiceInterface hashes and verifies user passwords
type PasswordServiceInterface interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// passwordService implements PasswordServiceInterface with bcrypt
type passwordService struct {
	cost int
}

// NewPasswordService creates a password service. Costs outside bcrypt's
// supported range fall back to the library default.
func NewPasswordService(cost int) PasswordServiceInterface {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &passwordService{cost: cost}
}

// Hash derives a bcrypt hash of the password
func (s *passwordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash
func (s *passwordService) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
