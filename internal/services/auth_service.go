package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/models"
	pkgauth "github.com/lumiflix/lumiflix/pkg/auth"
	pkglogger "github.com/lumiflix/lumiflix/pkg/logger"
)

// TokenRevocationRepository defines the interface for token revocation operations
type TokenRevocationRepository interface {
	RevokeToken(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// LockoutConfig controls the failed-login lockout state machine.
type LockoutConfig struct {
	MaxFailedLogins int
	LockoutDuration time.Duration
}

// AuthService handles signup, login and logout. Login drives the per-account
// lockout state machine persisted on the users table.
type AuthService struct {
	repo        UserRepository
	revokeRepo  TokenRevocationRepository
	tm          *auth.TokenManager
	timing      *auth.TimingDelay
	lockout     LockoutConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, revokeRepo TokenRevocationRepository, tm *auth.TokenManager, timing *auth.TimingDelay, lockout LockoutConfig, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		revokeRepo:  revokeRepo,
		tm:          tm,
		timing:      timing,
		lockout:     lockout,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Login authenticates a user and returns a session token.
//
// Failed attempts accumulate on the account; reaching the threshold locks
// the account for the configured duration. A login during an active lock is
// rejected even with the correct password. An expired lock clears on the
// next attempt, so the counter restarts rather than instantly re-locking.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	startTime := s.now()

	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		s.logger.Warn("login attempt with empty email")
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Pad the response so user enumeration by timing stays impractical
			s.timing.WaitFrom(startTime)
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	if user.Locked(now) {
		s.logger.Info("login blocked: account locked", slog.String("user_id", user.ID))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
			Success:       false,
		})
		return nil, models.ErrAccountLocked
	}

	// An expired lock means the penalty was served; the counter restarts.
	failedAttempts := user.FailedAttempts
	if user.LockedUntil != nil && !user.Locked(now) {
		failedAttempts = 0
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		failedAttempts++

		var lockedUntil *time.Time
		if failedAttempts >= s.lockout.MaxFailedLogins {
			t := now.Add(s.lockout.LockoutDuration)
			lockedUntil = &t
		}

		// The counter write is part of the guard; losing it would let an
		// attacker keep the account out of its lockout window.
		if err := s.repo.UpdateLoginState(ctx, user.ID, failedAttempts, lockedUntil); err != nil {
			s.logger.Error("failed to record login failure", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		s.timing.WaitFrom(startTime)
		s.logger.Info("login failed: invalid credentials",
			slog.String("user_id", user.ID),
			slog.Int("failed_attempts", failedAttempts))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
			Success:       false,
		})

		if lockedUntil != nil {
			s.auditLogger.LogAccountAction("account_locked", user.ID, ipAddress, map[string]string{
				"locked_until": lockedUntil.UTC().Format(time.RFC3339),
			})
			return nil, models.ErrAccountLocked
		}
		return nil, models.ErrUnauthorized
	}

	// Success clears the lockout bookkeeping if any had accumulated. No token
	// is issued when the reset fails to persist.
	if user.FailedAttempts != 0 || user.LockedUntil != nil {
		if err := s.repo.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			s.logger.Error("failed to clear login state", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	token, err := s.tm.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(user),
	}, nil
}

// Signup creates a new user account and returns a session token
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("signup failed: user already exists")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         "user",
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		s.logger.Error("failed to create user", slog.Any("error", err))
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateSessionToken(createdUser.ID, createdUser.Email)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("user_id", createdUser.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user signed up", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAccountAction("user_registered", createdUser.ID, "", nil)

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(createdUser),
	}, nil
}

// Logout revokes the presented session token
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	claims, err := s.tm.ValidateToken(sessionToken)
	if err != nil {
		return models.ErrUnauthorized
	}

	expiresAt := claims.ExpiresAt.Time
	err = s.revokeRepo.RevokeToken(ctx, claims.ID, claims.UserID, expiresAt, "logout")
	if err != nil {
		s.logger.Error("failed to revoke token", slog.String("jti", claims.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// userModelToResponse converts a user model to its response DTO
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
