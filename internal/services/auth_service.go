package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"centsible/internal/dto"
	"centsible/internal/models"
	"centsible/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthServiceInterface handles registration, login and profile access
type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(req dto.LoginRequest) (*dto.TokenResponse, error)
	GetProfile(userID uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
}

// authService implements AuthServiceInterface
type authService struct {
	userRepo    repositories.UserRepositoryInterface
	profileRepo repositories.ProfileRepositoryInterface
	passwords   PasswordServiceInterface
	tokens      TokenServiceInterface
	logger      *slog.Logger
	metrics     *PrometheusMetrics
}

// NewAuthService creates an auth service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	profileRepo repositories.ProfileRepositoryInterface,
	passwords PasswordServiceInterface,
	tokens TokenServiceInterface,
	logger *slog.Logger,
	metrics *PrometheusMetrics,
) AuthServiceInterface {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		passwords:   passwords,
		tokens:      tokens,
		logger:      logger,
		metrics:     metrics,
	}
}

// Register creates a user with their profile in one transaction and logs
// them straight in.
func (s *authService) Register(req dto.RegisterRequest) (*dto.TokenResponse, error) {
	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = models.CurrencyUSD
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	profile := &models.Profile{
		Currency: currency,
	}

	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	s.recordAuthEvent("register")

	return s.issueToken(user)
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *authService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.recordAuthEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwords.Verify(user.PasswordHash, req.Password) {
		s.recordAuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		s.logger.Error("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.recordAuthEvent("login")
	return s.issueToken(user)
}

// GetProfile returns the authenticated user's combined user and profile view
func (s *authService) GetProfile(userID uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return toUserProfileResponse(user, profile), nil
}

// UpdateProfile changes the user's financial preferences
func (s *authService) UpdateProfile(userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	fields := map[string]interface{}{}

	if req.MonthlyIncome != nil {
		income, err := decimal.NewFromString(*req.MonthlyIncome)
		if err != nil {
			return nil, fmt.Errorf("invalid monthly income: %w", err)
		}
		if income.IsNegative() {
			return nil, errors.New("monthly income cannot be negative")
		}
		fields["monthly_income"] = income
	}
	if req.Currency != nil {
		if !models.IsValidCurrency(*req.Currency) {
			return nil, models.ErrInvalidCurrency
		}
		fields["currency"] = *req.Currency
	}

	if len(fields) > 0 {
		if err := s.profileRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}

func (s *authService) issueToken(user *models.User) (*dto.TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) recordAuthEvent(event string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event)
	}
}

func toUserProfileResponse(user *models.User, profile *models.Profile) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:            user.ID.String(),
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Currency:      profile.Currency,
		MonthlyIncome: profile.MonthlyIncome.StringFixed(2),
		BankLinked:    profile.IsLinked(),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
