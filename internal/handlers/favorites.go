package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/models"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
)

// FavoriteServiceInterface defines the interface for favorites logic
type FavoriteServiceInterface interface {
	List(ctx context.Context, userID string) ([]*models.Favorite, error)
	Add(ctx context.Context, userID string, movieID int64, title, posterPath string) (*models.Favorite, error)
	Remove(ctx context.Context, userID string, movieID int64) error
}

// FavoriteHandler handles the authenticated user's favorites list
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// AddFavoriteRequest represents the request body for favoriting a title
type AddFavoriteRequest struct {
	MovieID    int64  `json:"movie_id" validate:"required,gte=1"`
	Title      string `json:"title" validate:"required,min=1,max=500"`
	PosterPath string `json:"poster_path" validate:"max=500"`
}

// FavoriteResponse represents a favorite in API responses
type FavoriteResponse struct {
	ID         string `json:"id"`
	MovieID    int64  `json:"movie_id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func favoriteToResponse(f *models.Favorite) *FavoriteResponse {
	return &FavoriteResponse{
		ID:         f.ID,
		MovieID:    f.MovieID,
		Title:      f.Title,
		PosterPath: f.PosterPath,
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
	}
}

// List returns the caller's favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	favorites, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		resp = append(resp, favoriteToResponse(f))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Add favorites a title for the caller
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	favorite, err := h.service.Add(r.Context(), claims.UserID, req.MovieID, req.Title, req.PosterPath)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Title is already in favorites")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid favorite")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, favoriteToResponse(favorite))
}

// Remove deletes a favorite by movie id
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	if err := h.service.Remove(r.Context(), claims.UserID, movieID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Favorite not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
