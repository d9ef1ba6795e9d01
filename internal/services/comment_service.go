package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lumiflix/lumiflix/internal/models"
)

const maxCommentLength = 2000

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	ListByMovie(ctx context.Context, movieID int64) ([]*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Update(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
}

// CommentService handles per-title comment threads. Edits are owner-only;
// deletion is open to the owner and to admins.
type CommentService struct {
	repo   CommentRepository
	logger *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(repo CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		repo:   repo,
		logger: logger,
	}
}

// ListByMovie returns the comment thread for a title, newest first
func (s *CommentService) ListByMovie(ctx context.Context, movieID int64) ([]*models.Comment, error) {
	comments, err := s.repo.ListByMovie(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to list comments", slog.Int64("movie_id", movieID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return comments, nil
}

// Create posts a comment on a title
func (s *CommentService) Create(ctx context.Context, user *models.User, movieID int64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if movieID <= 0 || body == "" || utf8.RuneCountInString(body) > maxCommentLength {
		return nil, models.ErrBadRequest
	}

	comment := &models.Comment{
		UserID:     user.ID,
		AuthorName: user.Name,
		MovieID:    movieID,
		Body:       body,
	}

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		s.logger.Error("failed to create comment", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("comment created", slog.String("comment_id", created.ID), slog.Int64("movie_id", movieID))
	return created, nil
}

// Update edits a comment's body. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, commentID, actorID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > maxCommentLength {
		return models.ErrBadRequest
	}

	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get comment", slog.String("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if comment.UserID != actorID {
		return models.ErrForbidden
	}

	if err := s.repo.Update(ctx, commentID, body); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update comment", slog.String("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// Delete removes a comment. The author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, commentID string, actor *models.User) error {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get comment", slog.String("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if comment.UserID != actor.ID && actor.Role != "admin" {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete comment", slog.String("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("comment deleted", slog.String("comment_id", commentID), slog.String("actor_id", actor.ID))
	return nil
}
