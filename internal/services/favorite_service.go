package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lumiflix/lumiflix/internal/models"
)

// FavoriteRepository defines the interface for favorite persistence
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error)
	Create(ctx context.Context, favorite *models.Favorite) (*models.Favorite, error)
	Delete(ctx context.Context, userID string, movieID int64) error
}

// FavoriteService handles a user's favorites list. Title and poster are
// cached on the row so listing favorites never calls the metadata provider.
type FavoriteService struct {
	repo   FavoriteRepository
	logger *slog.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(repo FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all favorites for a user, newest first
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	favorites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list favorites", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return favorites, nil
}

// Add stores a favorite. Favoriting the same title twice is a conflict.
func (s *FavoriteService) Add(ctx context.Context, userID string, movieID int64, title, posterPath string) (*models.Favorite, error) {
	if movieID <= 0 || title == "" {
		return nil, models.ErrBadRequest
	}

	favorite := &models.Favorite{
		UserID:     userID,
		MovieID:    movieID,
		Title:      title,
		PosterPath: posterPath,
	}

	created, err := s.repo.Create(ctx, favorite)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to add favorite", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("favorite added", slog.String("user_id", userID), slog.Int64("movie_id", movieID))
	return created, nil
}

// Remove deletes a favorite
func (s *FavoriteService) Remove(ctx context.Context, userID string, movieID int64) error {
	err := s.repo.Delete(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to remove favorite", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
