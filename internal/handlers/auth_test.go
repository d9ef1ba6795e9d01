package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/services"
)

func newAuthHandler(service AuthServiceInterface, resetService PasswordResetServiceInterface, limiter LoginRateLimiter) *AuthHandler {
	if limiter == nil {
		limiter = &MockLoginRateLimiter{}
	}
	return NewAuthHandler(service, resetService, limiter, nil)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			assert.Equal(t, "viewer@example.com", email)
			assert.Equal(t, "correct-horse", password)
			assert.NotEmpty(t, ipAddress)
			return &services.AuthResponse{
				Token: "session-token",
				User:  &services.UserResponse{ID: "user123", Email: email},
			}, nil
		},
	}
	handler := newAuthHandler(service, nil, nil)

	body := `{"email":"viewer@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51442"
	w := doRequest(handler.Login, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp services.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "session-token", resp.Token)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestAuthHandler_Login_RateLimited_BeforeCredentialCheck(t *testing.T) {
	limiter := &MockLoginRateLimiter{
		AllowFunc: func(ip string) bool {
			assert.Equal(t, "203.0.113.9", ip)
			return false
		},
	}
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			t.Fatal("throttled request must not reach the auth service")
			return nil, nil
		},
	}
	handler := newAuthHandler(service, nil, limiter)

	body := `{"email":"viewer@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51442"
	w := doRequest(handler.Login, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAuthHandler_Login_AccountLocked(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountLocked
		},
	}
	handler := newAuthHandler(service, nil, nil)

	body := `{"email":"viewer@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := doRequest(handler.Login, req)

	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := newAuthHandler(service, nil, nil)

	body := `{"email":"viewer@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := doRequest(handler.Login, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	w := doRequest(handler.Login, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_MissingEmail(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{}, nil, nil)

	body := `{"password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := doRequest(handler.Login, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	service := &MockAuthService{
		SignupFunc: func(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Token: "session-token",
				User:  &services.UserResponse{ID: "user123", Email: email, Name: name},
			}, nil
		},
	}
	handler := newAuthHandler(service, nil, nil)

	body := `{"email":"new@example.com","password":"S3cure!pass","name":"New Viewer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	w := doRequest(handler.Signup, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp services.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "New Viewer", resp.User.Name)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	service := &MockAuthService{
		SignupFunc: func(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}
	handler := newAuthHandler(service, nil, nil)

	body := `{"email":"taken@example.com","password":"S3cure!pass","name":"New Viewer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	w := doRequest(handler.Signup, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	service := &MockAuthService{
		LogoutFunc: func(ctx context.Context, sessionToken string) error {
			assert.Equal(t, "the-raw-token", sessionToken)
			return nil
		},
	}
	handler := newAuthHandler(service, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = withBearerToken(req, "the-raw-token")
	w := doRequest(handler.Logout, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthHandler_Logout_MissingToken(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := doRequest(handler.Logout, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RequestPasswordReset_AlwaysAccepted(t *testing.T) {
	resetService := &MockPasswordResetService{
		RequestResetFunc: func(ctx context.Context, email string) error {
			assert.Equal(t, "whoever@example.com", email)
			return nil
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	body := `{"email":"whoever@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password-reset/request", strings.NewReader(body))
	w := doRequest(handler.RequestPasswordReset, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestAuthHandler_ConfirmPasswordReset_Success(t *testing.T) {
	resetService := &MockPasswordResetService{
		ConfirmResetFunc: func(ctx context.Context, token, newPassword string) error {
			assert.Equal(t, "raw-reset-token", token)
			assert.Equal(t, "N3w!password", newPassword)
			return nil
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	body := `{"token":"raw-reset-token","new_password":"N3w!password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password-reset/confirm", strings.NewReader(body))
	w := doRequest(handler.ConfirmPasswordReset, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_VerifyPasswordReset_Valid(t *testing.T) {
	resetService := &MockPasswordResetService{
		VerifyResetFunc: func(ctx context.Context, token string) error {
			assert.Equal(t, "raw-reset-token", token)
			return nil
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/password-reset/verify?token=raw-reset-token", nil)
	w := doRequest(handler.VerifyPasswordReset, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())
}

func TestAuthHandler_VerifyPasswordReset_BadToken(t *testing.T) {
	resetService := &MockPasswordResetService{
		VerifyResetFunc: func(ctx context.Context, token string) error {
			return models.ErrUnauthorized
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/password-reset/verify?token=stale-token", nil)
	w := doRequest(handler.VerifyPasswordReset, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_VerifyPasswordReset_MissingToken(t *testing.T) {
	resetService := &MockPasswordResetService{
		VerifyResetFunc: func(ctx context.Context, token string) error {
			assert.Empty(t, token)
			return models.ErrUnauthorized
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/password-reset/verify", nil)
	w := doRequest(handler.VerifyPasswordReset, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ConfirmPasswordReset_BadToken(t *testing.T) {
	resetService := &MockPasswordResetService{
		ConfirmResetFunc: func(ctx context.Context, token, newPassword string) error {
			return models.ErrUnauthorized
		},
	}
	handler := newAuthHandler(&MockAuthService{}, resetService, nil)

	body := `{"token":"stale-token","new_password":"N3w!password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password-reset/confirm", strings.NewReader(body))
	w := doRequest(handler.ConfirmPasswordReset, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
