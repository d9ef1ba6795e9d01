package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/services"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
)

// CatalogHandler proxies catalog browsing endpoints
type CatalogHandler struct {
	service services.MetadataProvider
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service services.MetadataProvider) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Popular returns a page of popular titles
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query().Get("page"))

	list, err := h.service.Popular(r.Context(), page)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, list)
}

// Search returns titles matching the query parameter
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := parsePage(r.URL.Query().Get("page"))

	list, err := h.service.Search(r.Context(), query, page)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, list)
}

// Details returns the full record for one title
func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid movie id")
		return
	}

	details, err := h.service.Details(r.Context(), movieID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, details)
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// writeCatalogError maps provider errors onto the gateway's status codes:
// a failing provider is 502, a breaker-rejected provider is 503.
func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Title not found")
	case errors.Is(err, models.ErrUnavailable):
		pkghttp.WriteServiceUnavailable(w, "Catalog temporarily unavailable")
	case errors.Is(err, models.ErrUpstream):
		pkghttp.WriteBadGateway(w, "Catalog provider error")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
