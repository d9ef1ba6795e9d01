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

// RatingServiceInterface defines the interface for rating logic
type RatingServiceInterface interface {
	Rate(ctx context.Context, userID string, movieID int64, stars int) (*models.Rating, error)
	Summary(ctx context.Context, movieID int64) (*models.RatingSummary, error)
	UserRating(ctx context.Context, userID string, movieID int64) (*models.Rating, error)
	Remove(ctx context.Context, userID string, movieID int64) error
}

// RatingHandler handles star rating endpoints
type RatingHandler struct {
	service RatingServiceInterface
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(service RatingServiceInterface) *RatingHandler {
	return &RatingHandler{service: service}
}

// RateRequest represents the request body for rating a title
type RateRequest struct {
	Stars int `json:"stars" validate:"required,gte=1,lte=5"`
}

// RatingResponse represents one user's rating in API responses
type RatingResponse struct {
	MovieID   int64  `json:"movie_id"`
	Stars     int    `json:"stars"`
	UpdatedAt string `json:"updated_at"`
}

// RatingSummaryResponse represents the aggregate rating of a title
type RatingSummaryResponse struct {
	MovieID int64   `json:"movie_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func ratingToResponse(rating *models.Rating) *RatingResponse {
	return &RatingResponse{
		MovieID:   rating.MovieID,
		Stars:     rating.Stars,
		UpdatedAt: rating.UpdatedAt.Format(time.RFC3339),
	}
}

// Rate records the caller's star rating for a title
func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
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

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rating, err := h.service.Rate(r.Context(), claims.UserID, movieID, req.Stars)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid rating")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ratingToResponse(rating))
}

// Summary returns the aggregate rating for a title
func (h *RatingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	summary, err := h.service.Summary(r.Context(), movieID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid movie id")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &RatingSummaryResponse{
		MovieID: summary.MovieID,
		Average: summary.Average,
		Count:   summary.Count,
	})
}

// Mine returns the caller's own rating for a title
func (h *RatingHandler) Mine(w http.ResponseWriter, r *http.Request) {
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

	rating, err := h.service.UserRating(r.Context(), claims.UserID, movieID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No rating for this title")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ratingToResponse(rating))
}

// Remove deletes the caller's rating for a title
func (h *RatingHandler) Remove(w http.ResponseWriter, r *http.Request) {
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
			pkghttp.WriteNotFound(w, "No rating for this title")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
