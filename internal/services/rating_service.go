package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lumiflix/lumiflix/internal/models"
)

// RatingRepository defines the interface for rating persistence
type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (*models.Rating, error)
	Summarize(ctx context.Context, movieID int64) (*models.RatingSummary, error)
	Delete(ctx context.Context, userID string, movieID int64) error
}

// RatingService handles star ratings. A user holds at most one rating per
// title; rating again replaces the previous value.
type RatingService struct {
	repo   RatingRepository
	logger *slog.Logger
}

// NewRatingService creates a new RatingService
func NewRatingService(repo RatingRepository, logger *slog.Logger) *RatingService {
	return &RatingService{
		repo:   repo,
		logger: logger,
	}
}

// Rate records a user's star rating for a title
func (s *RatingService) Rate(ctx context.Context, userID string, movieID int64, stars int) (*models.Rating, error) {
	if movieID <= 0 || stars < 1 || stars > 5 {
		return nil, models.ErrBadRequest
	}

	rating, err := s.repo.Upsert(ctx, &models.Rating{
		UserID:  userID,
		MovieID: movieID,
		Stars:   stars,
	})
	if err != nil {
		s.logger.Error("failed to save rating", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return rating, nil
}

// Summary returns the average and count for a title. Titles with no
// ratings report a zero average, not an error.
func (s *RatingService) Summary(ctx context.Context, movieID int64) (*models.RatingSummary, error) {
	if movieID <= 0 {
		return nil, models.ErrBadRequest
	}

	summary, err := s.repo.Summarize(ctx, movieID)
	if err != nil {
		s.logger.Error("failed to summarize ratings", slog.Int64("movie_id", movieID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return summary, nil
}

// UserRating returns the caller's own rating for a title
func (s *RatingService) UserRating(ctx context.Context, userID string, movieID int64) (*models.Rating, error) {
	rating, err := s.repo.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get rating", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return rating, nil
}

// Remove deletes the caller's rating for a title
func (s *RatingService) Remove(ctx context.Context, userID string, movieID int64) error {
	err := s.repo.Delete(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to remove rating", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
