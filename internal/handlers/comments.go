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

// CommentServiceInterface defines the interface for comment logic
type CommentServiceInterface interface {
	ListByMovie(ctx context.Context, movieID int64) ([]*models.Comment, error)
	Create(ctx context.Context, user *models.User, movieID int64, body string) (*models.Comment, error)
	Update(ctx context.Context, commentID, actorID, body string) error
	Delete(ctx context.Context, commentID string, actor *models.User) error
}

// CommentHandler handles per-title comment threads. Create and delete need
// the full user record (author name, role), so the handler resolves it.
type CommentHandler struct {
	service CommentServiceInterface
	users   UserServiceInterface
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service CommentServiceInterface, users UserServiceInterface) *CommentHandler {
	return &CommentHandler{
		service: service,
		users:   users,
	}
}

// CommentRequest represents the request body for posting or editing a comment
type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID         string `json:"id"`
	MovieID    int64  `json:"movie_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func commentToResponse(c *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:         c.ID,
		MovieID:    c.MovieID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

// ListByMovie returns the comment thread for a title
func (h *CommentHandler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	comments, err := h.service.ListByMovie(r.Context(), movieID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentToResponse(c))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Create posts a comment on a title
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := h.resolveActor(w, r)
	if user == nil {
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.service.Create(r.Context(), user, movieID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid comment")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, commentToResponse(comment))
}

// Update edits the caller's own comment
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID := chi.URLParam(r, "commentID")

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Update(r.Context(), commentID, claims.UserID, req.Body); err != nil {
		writeCommentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a comment (author or admin)
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := h.resolveActor(w, r)
	if user == nil {
		return
	}

	commentID := chi.URLParam(r, "commentID")

	if err := h.service.Delete(r.Context(), commentID, user); err != nil {
		writeCommentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveActor loads the authenticated user's full record, writing the
// error response itself when that fails.
func (h *CommentHandler) resolveActor(w http.ResponseWriter, r *http.Request) *models.User {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return nil
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Authentication required")
			return nil
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return nil
	}
	return user
}

func writeCommentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Comment not found")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Not allowed to modify this comment")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid comment")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
