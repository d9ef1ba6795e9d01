package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
)

// MetadataProvider is the catalog surface of the metadata API
type MetadataProvider interface {
	Popular(ctx context.Context, page int) (*providers.MovieList, error)
	Search(ctx context.Context, query string, page int) (*providers.MovieList, error)
	Details(ctx context.Context, movieID int64) (*providers.MovieDetails, error)
}

// CatalogService proxies catalog browsing to the metadata provider
type CatalogService struct {
	provider MetadataProvider
	logger   *slog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(provider MetadataProvider, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		provider: provider,
		logger:   logger,
	}
}

// Popular returns a page of popular titles
func (s *CatalogService) Popular(ctx context.Context, page int) (*providers.MovieList, error) {
	return s.provider.Popular(ctx, page)
}

// Search returns titles matching the query
func (s *CatalogService) Search(ctx context.Context, query string, page int) (*providers.MovieList, error) {
	if query = strings.TrimSpace(query); query == "" {
		return nil, models.ErrBadRequest
	}
	return s.provider.Search(ctx, query, page)
}

// Details returns the full record for one title
func (s *CatalogService) Details(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
	if movieID <= 0 {
		return nil, models.ErrBadRequest
	}
	return s.provider.Details(ctx, movieID)
}
