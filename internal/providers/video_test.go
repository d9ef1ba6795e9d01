package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiflix/lumiflix/internal/models"
)

func TestStockVideoClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/search", r.URL.Path)
		assert.Equal(t, "ocean", r.URL.Query().Get("query"))
		assert.Equal(t, "15", r.URL.Query().Get("per_page"))
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"page": 1,
			"videos": [
				{"id": 101, "duration": 30, "video_files": [{"link": "https://cdn.example.com/101.mp4"}]},
				{"id": 102, "duration": 12, "video_files": [{"link": "https://cdn.example.com/102.mp4"}]},
				{"duration": 5}
			]
		}`))
	}))
	defer server.Close()

	client := NewStockVideoClient(server.URL, "test-key", testLogger())

	videos, err := client.Search(context.Background(), "ocean", 15)
	require.NoError(t, err)

	// The record without an id is dropped.
	require.Len(t, videos, 2)
	assert.Equal(t, int64(101), videos[0].ID)
	assert.Equal(t, int64(102), videos[1].ID)
	assert.Contains(t, string(videos[0].Payload), "101.mp4")
}

func TestStockVideoClient_Search_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewStockVideoClient(server.URL, "test-key", testLogger())

	_, err := client.Search(context.Background(), "ocean", 15)
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestStockVideoClient_Search_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"videos":[]}`))
	}))
	defer server.Close()

	client := NewStockVideoClient(server.URL, "test-key", testLogger())

	videos, err := client.Search(context.Background(), "nothing", 15)
	require.NoError(t, err)
	assert.Empty(t, videos)
}
