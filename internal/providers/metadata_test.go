package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiflix/lumiflix/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestMetadataClient_Popular(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/popular", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":2,"results":[{"id":603,"title":"The Matrix","vote_average":8.2}],"total_pages":10,"total_results":200}`))
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key", testLogger())

	list, err := client.Popular(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page)
	require.Len(t, list.Results, 1)
	assert.Equal(t, int64(603), list.Results[0].ID)
	assert.Equal(t, "The Matrix", list.Results[0].Title)
}

func TestMetadataClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "alien", r.URL.Query().Get("query"))

		w.Write([]byte(`{"page":1,"results":[{"id":348,"title":"Alien"}],"total_pages":1,"total_results":1}`))
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key", testLogger())

	list, err := client.Search(context.Background(), "alien", 0)
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "Alien", list.Results[0].Title)
}

func TestMetadataClient_Details_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key", testLogger())

	_, err := client.Details(context.Background(), 999999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMetadataClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key", testLogger())

	_, err := client.Popular(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestMetadataClient_BreakerOpensOnSustainedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMetadataClient(server.URL, "test-key", testLogger())

	var sawUnavailable bool
	for i := 0; i < 15; i++ {
		_, err := client.Popular(context.Background(), 1)
		require.Error(t, err)
		if errors.Is(err, models.ErrUnavailable) {
			sawUnavailable = true
			break
		}
	}
	assert.True(t, sawUnavailable, "expected breaker to reject requests after sustained failures")
}
