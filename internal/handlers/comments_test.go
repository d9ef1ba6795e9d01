package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiflix/lumiflix/internal/models"
)

func commentTestUsers() *MockUserService {
	return &MockUserService{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: id + "@example.com", Name: "Viewer", Role: "user"}, nil
		},
	}
}

func TestCommentHandler_ListByMovie(t *testing.T) {
	now := time.Now().UTC()
	service := &MockCommentService{
		ListByMovieFunc: func(ctx context.Context, movieID int64) ([]*models.Comment, error) {
			assert.Equal(t, int64(603), movieID)
			return []*models.Comment{
				{ID: "c1", MovieID: 603, AuthorName: "Viewer", Body: "great", CreatedAt: now, UpdatedAt: now},
			}, nil
		},
	}
	handler := NewCommentHandler(service, commentTestUsers())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/603/comments", nil)
	req = withURLParam(req, "movieID", "603")
	w := doRequest(handler.ListByMovie, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []*CommentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "c1", resp[0].ID)
	assert.Equal(t, "Viewer", resp[0].AuthorName)
}

func TestCommentHandler_Create_Success(t *testing.T) {
	service := &MockCommentService{
		CreateFunc: func(ctx context.Context, user *models.User, movieID int64, body string) (*models.Comment, error) {
			assert.Equal(t, "user123", user.ID)
			assert.Equal(t, int64(603), movieID)
			assert.Equal(t, "loved it", body)
			return &models.Comment{ID: "c1", UserID: user.ID, AuthorName: user.Name, MovieID: movieID, Body: body}, nil
		},
	}
	handler := NewCommentHandler(service, commentTestUsers())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/603/comments", strings.NewReader(`{"body":"loved it"}`))
	req = withURLParam(req, "movieID", "603")
	req = withClaims(req, "user123")
	w := doRequest(handler.Create, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCommentHandler_Create_Unauthenticated(t *testing.T) {
	handler := NewCommentHandler(&MockCommentService{}, commentTestUsers())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/603/comments", strings.NewReader(`{"body":"loved it"}`))
	req = withURLParam(req, "movieID", "603")
	w := doRequest(handler.Create, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommentHandler_Update_NotOwner(t *testing.T) {
	service := &MockCommentService{
		UpdateFunc: func(ctx context.Context, commentID, actorID, body string) error {
			return models.ErrForbidden
		},
	}
	handler := NewCommentHandler(service, commentTestUsers())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/comments/c1", strings.NewReader(`{"body":"edited"}`))
	req = withURLParam(req, "commentID", "c1")
	req = withClaims(req, "someone-else")
	w := doRequest(handler.Update, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentHandler_Delete_PassesFullActor(t *testing.T) {
	users := &MockUserService{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Name: "Moderator", Role: "admin"}, nil
		},
	}
	service := &MockCommentService{
		DeleteFunc: func(ctx context.Context, commentID string, actor *models.User) error {
			assert.Equal(t, "c1", commentID)
			assert.Equal(t, "admin", actor.Role)
			return nil
		},
	}
	handler := NewCommentHandler(service, users)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c1", nil)
	req = withURLParam(req, "commentID", "c1")
	req = withClaims(req, "admin1")
	w := doRequest(handler.Delete, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCommentHandler_Delete_NotFound(t *testing.T) {
	service := &MockCommentService{
		DeleteFunc: func(ctx context.Context, commentID string, actor *models.User) error {
			return models.ErrNotFound
		},
	}
	handler := NewCommentHandler(service, commentTestUsers())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/missing", nil)
	req = withURLParam(req, "commentID", "missing")
	req = withClaims(req, "user123")
	w := doRequest(handler.Delete, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
