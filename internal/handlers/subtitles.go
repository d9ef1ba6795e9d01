package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/models"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
)

// SubtitleServiceInterface defines the interface for subtitle logic
type SubtitleServiceInterface interface {
	ListByMovie(ctx context.Context, movieID int64) ([]*models.Subtitle, error)
	Get(ctx context.Context, id string) (*models.Subtitle, error)
	Upload(ctx context.Context, userID string, movieID int64, language, label, content string) (*models.Subtitle, error)
	Delete(ctx context.Context, id string, actor *models.User) error
}

// SubtitleHandler handles subtitle track endpoints
type SubtitleHandler struct {
	service SubtitleServiceInterface
	users   UserServiceInterface
}

// NewSubtitleHandler creates a new SubtitleHandler
func NewSubtitleHandler(service SubtitleServiceInterface, users UserServiceInterface) *SubtitleHandler {
	return &SubtitleHandler{
		service: service,
		users:   users,
	}
}

// UploadSubtitleRequest represents the request body for a subtitle upload
type UploadSubtitleRequest struct {
	Language string `json:"language" validate:"required,min=2,max=10"`
	Label    string `json:"label" validate:"max=100"`
	Content  string `json:"content" validate:"required"`
}

// SubtitleMeta is the listing view of a track, without the content body
type SubtitleMeta struct {
	ID       string `json:"id"`
	MovieID  int64  `json:"movie_id"`
	Language string `json:"language"`
	Label    string `json:"label"`
}

// ListByMovie returns the subtitle tracks for a title
func (h *SubtitleHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	subtitles, err := h.service.ListByMovie(r.Context(), movieID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	metas := make([]*SubtitleMeta, 0, len(subtitles))
	for _, s := range subtitles {
		metas = append(metas, &SubtitleMeta{
			ID:       s.ID,
			MovieID:  s.MovieID,
			Language: s.Language,
			Label:    s.Label,
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, metas)
}

// Download serves the WebVTT content of one track
func (h *SubtitleHandler) Download(w http.ResponseWriter, r *http.Request) {
	subtitleID := chi.URLParam(r, "subtitleID")

	subtitle, err := h.service.Get(r.Context(), subtitleID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Subtitle not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(subtitle.Content))
}

// Upload stores a new subtitle track for a title
func (h *SubtitleHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	var req UploadSubtitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	subtitle, err := h.service.Upload(r.Context(), claims.UserID, movieID, req.Language, req.Label, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Content must be valid WebVTT")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, &SubtitleMeta{
		ID:       subtitle.ID,
		MovieID:  subtitle.MovieID,
		Language: subtitle.Language,
		Label:    subtitle.Label,
	})
}

// Delete removes a subtitle track (uploader or admin)
func (h *SubtitleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Authentication required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	subtitleID := chi.URLParam(r, "subtitleID")

	if err := h.service.Delete(r.Context(), subtitleID, user); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Subtitle not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Not allowed to delete this subtitle")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
