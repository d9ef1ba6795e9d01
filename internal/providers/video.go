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

// StockVideo is one playable asset from the stock video provider. Payload
// keeps the provider's full JSON record so downstream consumers get the
// rendition list without us modeling every field.
type StockVideo struct {
	ID      int64
	Payload json.RawMessage
}

// StockVideoClient talks to the stock video provider's search API.
// Like MetadataClient it paces requests and trips a breaker on sustained
// failure, but the limiter is far more conservative because the provider
// enforces a strict per-key quota.
type StockVideoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewStockVideoClient(baseURL, apiKey string, logger *slog.Logger) *StockVideoClient {
	return &StockVideoClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: newBreaker("stock-video-api", logger),
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		logger:  logger,
	}
}

// Search returns up to perPage assets matching the query. The provider's
// record IDs are extracted so callers can deduplicate without parsing the
// payload themselves.
func (c *StockVideoClient) Search(ctx context.Context, query string, perPage int) ([]StockVideo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	requestURL := c.baseURL + "/videos/search?" + params.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, requestURL)
	})
	if err != nil {
		c.logger.Warn("stock video provider request failed",
			"query", query,
			"error", err,
		)
		return nil, mapBreakerError(err)
	}

	var envelope struct {
		Videos []json.RawMessage `json:"videos"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", models.ErrUpstream, err)
	}

	videos := make([]StockVideo, 0, len(envelope.Videos))
	for _, raw := range envelope.Videos {
		var header struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &header); err != nil || header.ID == 0 {
			c.logger.Warn("skipping stock video record without id", "query", query)
			continue
		}
		videos = append(videos, StockVideo{ID: header.ID, Payload: raw})
	}

	return videos, nil
}

func (c *StockVideoClient) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
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

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", models.ErrUpstream, resp.StatusCode)
	}

	return body, nil
}
