package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lumiflix/lumiflix/internal/models"
	pkgauth "github.com/lumiflix/lumiflix/pkg/auth"
	pkglogger "github.com/lumiflix/lumiflix/pkg/logger"
)

// PasswordResetRepository defines the interface for reset token persistence
type PasswordResetRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkAsUsed(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// PasswordResetService handles the email-based password reset flow. Only
// a SHA-256 hash of the token is stored, so a leaked database dump cannot
// be replayed against the confirm endpoint.
type PasswordResetService struct {
	users       UserRepository
	tokens      PasswordResetRepository
	mailer      Mailer
	tokenExpiry time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(users UserRepository, tokens PasswordResetRepository, mailer Mailer, tokenExpiry time.Duration, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *PasswordResetService {
	return &PasswordResetService{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// RequestReset issues a reset token and emails it to the account holder.
// Unknown addresses return success to avoid account enumeration.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.ErrBadRequest
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("failed to look up user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := pkgauth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	if _, err := s.tokens.Create(ctx, user.ID, hashResetToken(token), expiresAt); err != nil {
		s.logger.Error("failed to store reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Error("failed to send reset email", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset requested", slog.String("user_id", user.ID))
	s.auditLogger.LogAccountAction("password_reset_requested", user.ID, "", nil)
	return nil
}

// VerifyReset reports whether a reset token is still redeemable. It never
// mutates the token, so a client can check before showing the new-password
// form without burning the single use.
func (s *PasswordResetService) VerifyReset(ctx context.Context, token string) error {
	if token = strings.TrimSpace(token); token == "" {
		return models.ErrUnauthorized
	}

	resetToken, err := s.tokens.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if resetToken.UsedAt != nil || time.Now().After(resetToken.ExpiresAt) {
		return models.ErrUnauthorized
	}
	return nil
}

// ConfirmReset validates a reset token and sets the new password. The token
// is single use; confirming also clears any active login lockout.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if token = strings.TrimSpace(token); token == "" {
		return models.ErrUnauthorized
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	resetToken, err := s.tokens.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset with unknown token")
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if resetToken.UsedAt != nil || time.Now().After(resetToken.ExpiresAt) {
		s.logger.Info("password reset with used or expired token", slog.String("user_id", resetToken.UserID))
		return models.ErrUnauthorized
	}

	// Claim the token before touching the password; a concurrent confirm
	// with the same token loses here with ErrNotFound.
	if err := s.tokens.MarkAsUsed(ctx, resetToken.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to mark reset token used", slog.Any("error", err))
		return models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, resetToken.UserID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", resetToken.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	// A proven mailbox owner should not stay locked out; the password is
	// already changed, so a failed clear only delays them until the lock
	// expires.
	if err := s.users.UpdateLoginState(ctx, resetToken.UserID, 0, nil); err != nil {
		s.logger.Error("failed to clear login state after reset", slog.String("user_id", resetToken.UserID), slog.Any("error", err))
	}

	s.logger.Info("password reset completed", slog.String("user_id", resetToken.UserID))
	s.auditLogger.LogAccountAction("password_reset_completed", resetToken.UserID, "", nil)
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
