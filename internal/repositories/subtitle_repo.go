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

type SubtitleRepository struct {
	pool *pgxpool.Pool
}

func NewSubtitleRepository(db *database.DB) *SubtitleRepository {
	return &SubtitleRepository{pool: db.Pool}
}

func (r *SubtitleRepository) ListByMovie(ctx context.Context, movieID int64) ([]*models.Subtitle, error) {
	query := `
		SELECT id, user_id, movie_id, language, label, content, created_at
		FROM subtitles WHERE movie_id = $1 ORDER BY language, created_at
	`

	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtitles: %w", err)
	}
	defer rows.Close()

	subtitles := make([]*models.Subtitle, 0)
	for rows.Next() {
		var s models.Subtitle
		if err := rows.Scan(&s.ID, &s.UserID, &s.MovieID, &s.Language, &s.Label, &s.Content, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subtitle: %w", err)
		}
		subtitles = append(subtitles, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subtitles, nil
}

func (r *SubtitleRepository) GetByID(ctx context.Context, id string) (*models.Subtitle, error) {
	query := `
		SELECT id, user_id, movie_id, language, label, content, created_at
		FROM subtitles WHERE id = $1
	`

	var s models.Subtitle
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.MovieID, &s.Language, &s.Label, &s.Content, &s.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

func (r *SubtitleRepository) Create(ctx context.Context, subtitle *models.Subtitle) (*models.Subtitle, error) {
	subtitle.ID = uuid.New().String()
	subtitle.CreatedAt = time.Now()

	query := `
		INSERT INTO subtitles (id, user_id, movie_id, language, label, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		subtitle.ID, subtitle.UserID, subtitle.MovieID,
		subtitle.Language, subtitle.Label, subtitle.Content, subtitle.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return subtitle, nil
}

func (r *SubtitleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM subtitles WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
