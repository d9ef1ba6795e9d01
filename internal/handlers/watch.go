package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/models"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
)

// VideoSelector maps catalog titles onto pooled playable assets
type VideoSelector interface {
	SelectVideo(ctx context.Context, catalogID int64) (*models.PooledVideo, error)
}

// WatchHandler serves the playback endpoint
type WatchHandler struct {
	selector VideoSelector
}

// NewWatchHandler creates a new WatchHandler
func NewWatchHandler(selector VideoSelector) *WatchHandler {
	return &WatchHandler{selector: selector}
}

// WatchResponse carries the selected asset for a title. Video is the
// provider's full record, passed through untouched.
type WatchResponse struct {
	MovieID int64           `json:"movie_id"`
	Video   json.RawMessage `json:"video"`
}

// Watch returns the playable asset for a catalog title. 503 means the pool
// is empty and could not be seeded right now; the client should retry.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	video, err := h.selector.SelectVideo(r.Context(), movieID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteServiceUnavailable(w, "No playable video available right now")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &WatchResponse{
		MovieID: movieID,
		Video:   video.Payload,
	})
}
