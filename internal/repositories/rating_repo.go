package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumiflix/lumiflix/internal/database"
	"github.com/lumiflix/lumiflix/internal/models"
)

type RatingRepository struct {
	pool *pgxpool.Pool
}

func NewRatingRepository(db *database.DB) *RatingRepository {
	return &RatingRepository{pool: db.Pool}
}

// Upsert writes a user's star rating, replacing any earlier rating for the
// same movie.
func (r *RatingRepository) Upsert(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	now := time.Now()

	query := `
		INSERT INTO ratings (id, user_id, movie_id, stars, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET stars = EXCLUDED.stars, updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, movie_id, stars, created_at, updated_at
	`

	var out models.Rating
	err := r.pool.QueryRow(ctx, query,
		uuid.New().String(), rating.UserID, rating.MovieID, rating.Stars, now,
	).Scan(&out.ID, &out.UserID, &out.MovieID, &out.Stars, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &out, nil
}

func (r *RatingRepository) GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (*models.Rating, error) {
	query := `
		SELECT id, user_id, movie_id, stars, created_at, updated_at
		FROM ratings WHERE user_id = $1 AND movie_id = $2
	`

	var rating models.Rating
	err := r.pool.QueryRow(ctx, query, userID, movieID).Scan(
		&rating.ID, &rating.UserID, &rating.MovieID, &rating.Stars, &rating.CreatedAt, &rating.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rating, nil
}

// Summarize aggregates the average and count for one movie. A movie with no
// ratings yields average 0 and count 0, not ErrNotFound.
func (r *RatingRepository) Summarize(ctx context.Context, movieID int64) (*models.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(stars), 0), COUNT(*)
		FROM ratings WHERE movie_id = $1
	`

	summary := &models.RatingSummary{MovieID: movieID}
	err := r.pool.QueryRow(ctx, query, movieID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return summary, nil
}

func (r *RatingRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	query := `DELETE FROM ratings WHERE user_id = $1 AND movie_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, movieID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
