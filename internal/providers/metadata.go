package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/lumiflix/lumiflix/internal/models"
)

const maxResponseBytes = 4 << 20 // 4 MiB cap on provider response bodies

// Movie is a single catalog entry as returned by the metadata provider.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
}

// MovieList is a paginated catalog response.
type MovieList struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MovieDetails carries the full record for a single title.
type MovieDetails struct {
	Movie
	Runtime int `json:"runtime"`
	Genres  []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Tagline string `json:"tagline"`
	Status  string `json:"status"`
}

// MetadataClient talks to the movie metadata provider. Requests are paced
// by a token bucket and guarded by a circuit breaker so a slow or failing
// provider cannot exhaust our handler goroutines.
type MetadataClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewMetadataClient(baseURL, apiKey string, logger *slog.Logger) *MetadataClient {
	return &MetadataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: newBreaker("metadata-api", logger),
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		logger:  logger,
	}
}

func (c *MetadataClient) Popular(ctx context.Context, page int) (*MovieList, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	body, err := c.get(ctx, "/movie/popular", params)
	if err != nil {
		return nil, err
	}

	var list MovieList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decoding popular response: %v", models.ErrUpstream, err)
	}
	return &list, nil
}

func (c *MetadataClient) Search(ctx context.Context, query string, page int) (*MovieList, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	body, err := c.get(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}

	var list MovieList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", models.ErrUpstream, err)
	}
	return &list, nil
}

func (c *MetadataClient) Details(ctx context.Context, movieID int64) (*MovieDetails, error) {
	body, err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{})
	if err != nil {
		return nil, err
	}

	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("%w: decoding details response: %v", models.ErrUpstream, err)
	}
	return &details, nil
}

func (c *MetadataClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("api_key", c.apiKey)
	requestURL := c.baseURL + path + "?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, requestURL)
	})
	if err != nil {
		c.logger.Warn("metadata provider request failed",
			"path", path,
			"error", err,
		)
		return nil, mapBreakerError(err)
	}
	return body, nil
}

func (c *MetadataClient) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", models.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", models.ErrUpstream, resp.StatusCode)
	}

	return body, nil
}
