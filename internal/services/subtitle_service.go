package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lumiflix/lumiflix/internal/models"
)

const maxSubtitleBytes = 512 * 1024

// SubtitleRepository defines the interface for subtitle persistence
type SubtitleRepository interface {
	ListByMovie(ctx context.Context, movieID int64) ([]*models.Subtitle, error)
	GetByID(ctx context.Context, id string) (*models.Subtitle, error)
	Create(ctx context.Context, subtitle *models.Subtitle) (*models.Subtitle, error)
	Delete(ctx context.Context, id string) error
}

// SubtitleService handles user-contributed WebVTT subtitle tracks
type SubtitleService struct {
	repo   SubtitleRepository
	logger *slog.Logger
}

// NewSubtitleService creates a new SubtitleService
func NewSubtitleService(repo SubtitleRepository, logger *slog.Logger) *SubtitleService {
	return &SubtitleService{
		repo:   repo,
		logger: logger,
	}
}

// ListByMovie returns the subtitle tracks available for a title
func (s *SubtitleService) ListByMovie(ctx context.Context, movieID int64) ([]*models.Subtitle, error) {
	subtitles, err := s.repo.ListByMovie(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to list subtitles", slog.Int64("movie_id", movieID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return subtitles, nil
}

// Get returns a single subtitle track with its content
func (s *SubtitleService) Get(ctx context.Context, id string) (*models.Subtitle, error) {
	subtitle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get subtitle", slog.String("subtitle_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return subtitle, nil
}

// Upload stores a subtitle track. Content must be WebVTT.
func (s *SubtitleService) Upload(ctx context.Context, userID string, movieID int64, language, label, content string) (*models.Subtitle, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if movieID <= 0 || language == "" || len(content) > maxSubtitleBytes {
		return nil, models.ErrBadRequest
	}
	if !strings.HasPrefix(strings.TrimPrefix(content, "\ufeff"), "WEBVTT") {
		return nil, models.ErrBadRequest
	}

	subtitle := &models.Subtitle{
		UserID:   userID,
		MovieID:  movieID,
		Language: language,
		Label:    label,
		Content:  content,
	}

	created, err := s.repo.Create(ctx, subtitle)
	if err != nil {
		s.logger.Error("failed to upload subtitle", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("subtitle uploaded",
		slog.String("subtitle_id", created.ID),
		slog.Int64("movie_id", movieID),
		slog.String("language", language))
	return created, nil
}

// Delete removes a subtitle track. The uploader or an admin may delete.
func (s *SubtitleService) Delete(ctx context.Context, id string, actor *models.User) error {
	subtitle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get subtitle", slog.String("subtitle_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if subtitle.UserID != actor.ID && actor.Role != "admin" {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete subtitle", slog.String("subtitle_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}
