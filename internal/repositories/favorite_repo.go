package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumiflix/lumiflix/internal/database"
	"github.com/lumiflix/lumiflix/internal/models"
)

type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(db *database.DB) *FavoriteRepository {
	return &FavoriteRepository{pool: db.Pool}
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error) {
	query := `
		SELECT id, user_id, movie_id, title, poster_path, created_at
		FROM favorites WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*models.Favorite, 0)
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.Title, &f.PosterPath, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return favorites, nil
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) (*models.Favorite, error) {
	favorite.ID = uuid.New().String()
	favorite.CreatedAt = time.Now()

	query := `
		INSERT INTO favorites (id, user_id, movie_id, title, poster_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		favorite.ID, favorite.UserID, favorite.MovieID,
		favorite.Title, favorite.PosterPath, favorite.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return favorite, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, movieID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
