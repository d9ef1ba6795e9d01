package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumiflix/lumiflix/internal/database"
	"github.com/lumiflix/lumiflix/internal/models"
)

// VideoPoolRepository stores stock-video provider assets. Listing order is
// (created_at, external_id), which keeps deterministic selection stable as
// long as pool membership does not change.
type VideoPoolRepository struct {
	pool *pgxpool.Pool
}

func NewVideoPoolRepository(db *database.DB) *VideoPoolRepository {
	return &VideoPoolRepository{pool: db.Pool}
}

func scanVideoRows(rows pgx.Rows) ([]*models.PooledVideo, error) {
	defer rows.Close()

	videos := make([]*models.PooledVideo, 0)

	for rows.Next() {
		var v models.PooledVideo
		var payload []byte
		if err := rows.Scan(&v.ID, &v.ExternalID, &payload, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pooled video: %w", err)
		}
		v.Payload = json.RawMessage(payload)
		videos = append(videos, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return videos, nil
}

// List returns the entire pool in stable creation order.
func (r *VideoPoolRepository) List(ctx context.Context) ([]*models.PooledVideo, error) {
	query := `
		SELECT id, external_id, payload, created_at
		FROM video_pool ORDER BY created_at, external_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query video pool: %w", err)
	}

	return scanVideoRows(rows)
}

func (r *VideoPoolRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM video_pool`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// InsertIfAbsent stores a provider asset unless its external id is already
// pooled. Returns true when a new row was written.
func (r *VideoPoolRepository) InsertIfAbsent(ctx context.Context, externalID int64, payload json.RawMessage) (bool, error) {
	query := `
		INSERT INTO video_pool (id, external_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, uuid.New().String(), externalID, []byte(payload), time.Now())
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return result.RowsAffected() > 0, nil
}

// EvictOldest removes the n oldest entries by creation order.
func (r *VideoPoolRepository) EvictOldest(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	query := `
		DELETE FROM video_pool
		WHERE id IN (
			SELECT id FROM video_pool ORDER BY created_at, external_id LIMIT $1
		)
	`

	result, err := r.pool.Exec(ctx, query, n)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
