package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"centsible/internal/dto"
	"centsible/internal/repositories"
	"centsible/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// fakeAuthService implements services.AuthServiceInterface with
// configurable function fields.
type fakeAuthService struct {
	register      func(req dto.RegisterRequest) (*dto.TokenResponse, error)
	login         func(req dto.LoginRequest) (*dto.TokenResponse, error)
	getProfile    func(userID uuid.UUID) (*dto.UserProfileResponse, error)
	updateProfile func(userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
}

func (f *fakeAuthService) Register(req dto.RegisterRequest) (*dto.TokenResponse, error) {
	return f.register(req)
}

func (f *fakeAuthService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	return f.login(req)
}

func (f *fakeAuthService) GetProfile(userID uuid.UUID) (*dto.UserProfileResponse, error) {
	return f.getProfile(userID)
}

func (f *fakeAuthService) UpdateProfile(userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	return f.updateProfile(userID, req)
}

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

type AuthHandlerSuite struct {
	suite.Suite
	e *echo.Echo
}

func (s *AuthHandlerSuite) SetupTest() {
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *AuthHandlerSuite) jsonRequest(method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.e.NewContext(req, rec), rec
}

func (s *AuthHandlerSuite) TestRegister() {
	service := &fakeAuthService{
		register: func(req dto.RegisterRequest) (*dto.TokenResponse, error) {
			s.Equal("test@example.com", req.Email)
			return &dto.TokenResponse{
				AccessToken: "token-abc",
				TokenType:   "Bearer",
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		},
	}
	handler := NewAuthHandler(service)

	c, rec := s.jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":     "test@example.com",
		"password":  "a-long-password!",
		"firstName": "Jane",
		"lastName":  "Doe",
	})

	s.Require().NoError(handler.Register(c))
	s.Equal(http.StatusCreated, rec.Code)

	var response dto.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("token-abc", response.AccessToken)
	s.Equal("Bearer", response.TokenType)
}

func (s *AuthHandlerSuite) TestRegister_ValidationFailure() {
	handler := NewAuthHandler(&fakeAuthService{})

	c, _ := s.jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":     "not-an-email",
		"password":  "short",
		"firstName": "Jane",
		"lastName":  "Doe",
	})

	// Validation errors propagate to the central error handler
	s.Error(handler.Register(c))
}

func (s *AuthHandlerSuite) TestRegister_EmailTaken() {
	service := &fakeAuthService{
		register: func(req dto.RegisterRequest) (*dto.TokenResponse, error) {
			return nil, repositories.ErrEmailExists
		},
	}
	handler := NewAuthHandler(service)

	c, rec := s.jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":     "taken@example.com",
		"password":  "a-long-password!",
		"firstName": "Jane",
		"lastName":  "Doe",
	})

	s.Require().NoError(handler.Register(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_005")
}

func (s *AuthHandlerSuite) TestLogin_InvalidCredentials() {
	service := &fakeAuthService{
		login: func(req dto.LoginRequest) (*dto.TokenResponse, error) {
			return nil, services.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(service)

	c, rec := s.jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrong",
	})

	s.Require().NoError(handler.Login(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_001")
}

func (s *AuthHandlerSuite) TestGetProfile() {
	userID := uuid.New()
	service := &fakeAuthService{
		getProfile: func(id uuid.UUID) (*dto.UserProfileResponse, error) {
			s.Equal(userID, id)
			return &dto.UserProfileResponse{ID: id.String(), Email: "user@example.com", Currency: "USD"}, nil
		},
	}
	handler := NewAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", userID)

	s.Require().NoError(handler.GetProfile(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "user@example.com")
}

func (s *AuthHandlerSuite) TestGetProfile_NoUserContext() {
	handler := NewAuthHandler(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	s.Require().NoError(handler.GetProfile(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthHandlerSuite) TestUpdateProfile_InvalidCurrency() {
	handler := NewAuthHandler(&fakeAuthService{})

	c, _ := s.jsonRequest(http.MethodPatch, "/users/me", map[string]string{
		"currency": "XXX",
	})
	c.Set("user_id", uuid.New())

	// currency_code validation rejects before the service is reached
	s.Error(handler.UpdateProfile(c))
}
