package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
)

func TestCatalogHandler_Popular_DefaultsPage(t *testing.T) {
	service := &MockCatalogService{
		PopularFunc: func(ctx context.Context, page int) (*providers.MovieList, error) {
			assert.Equal(t, 1, page)
			return &providers.MovieList{Page: 1, Results: []providers.Movie{{ID: 603, Title: "The Matrix"}}}, nil
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/popular", nil)
	w := doRequest(handler.Popular, req)

	require.Equal(t, http.StatusOK, w.Code)

	var list providers.MovieList
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Results, 1)
	assert.Equal(t, "The Matrix", list.Results[0].Title)
}

func TestCatalogHandler_Popular_ParsesPage(t *testing.T) {
	service := &MockCatalogService{
		PopularFunc: func(ctx context.Context, page int) (*providers.MovieList, error) {
			assert.Equal(t, 3, page)
			return &providers.MovieList{Page: 3}, nil
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/popular?page=3", nil)
	w := doRequest(handler.Popular, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogHandler_Search_EmptyQuery(t *testing.T) {
	service := &MockCatalogService{
		SearchFunc: func(ctx context.Context, query string, page int) (*providers.MovieList, error) {
			return nil, models.ErrBadRequest
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/search", nil)
	w := doRequest(handler.Search, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_Details_NotFound(t *testing.T) {
	service := &MockCatalogService{
		DetailsFunc: func(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/999999", nil)
	req = withURLParam(req, "movieID", "999999")
	w := doRequest(handler.Details, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_Details_UpstreamDown(t *testing.T) {
	service := &MockCatalogService{
		DetailsFunc: func(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
			return nil, models.ErrUpstream
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/603", nil)
	req = withURLParam(req, "movieID", "603")
	w := doRequest(handler.Details, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCatalogHandler_Details_BreakerOpen(t *testing.T) {
	service := &MockCatalogService{
		DetailsFunc: func(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
			return nil, models.ErrUnavailable
		},
	}
	handler := NewCatalogHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/603", nil)
	req = withURLParam(req, "movieID", "603")
	w := doRequest(handler.Details, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
