package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/database"
	"github.com/lumiflix/lumiflix/internal/handlers"
	"github.com/lumiflix/lumiflix/internal/middleware"
	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
	"github.com/lumiflix/lumiflix/internal/repositories"
	"github.com/lumiflix/lumiflix/internal/routes"
	"github.com/lumiflix/lumiflix/internal/services"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
	pkglogger "github.com/lumiflix/lumiflix/pkg/logger"
)

// SentEmail represents a captured password reset email
type SentEmail struct {
	To    string
	Token string
}

// MockMailer captures reset emails for test assertions
type MockMailer struct {
	mu         sync.Mutex
	SentEmails []SentEmail
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Token: token})
	return nil
}

// LastEmail returns the most recent captured email
func (m *MockMailer) LastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// fakeVideoSearcher serves deterministic stock videos without a provider
type fakeVideoSearcher struct {
	mu     sync.Mutex
	nextID int64
}

func (f *fakeVideoSearcher) Search(ctx context.Context, query string, perPage int) ([]providers.StockVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	videos := make([]providers.StockVideo, 0, perPage)
	for i := 0; i < perPage; i++ {
		f.nextID++
		payload := fmt.Sprintf(`{"id":%d,"video_files":[{"link":"https://cdn.example.com/%d.mp4"}]}`, f.nextID, f.nextID)
		videos = append(videos, providers.StockVideo{ID: f.nextID, Payload: json.RawMessage(payload)})
	}
	return videos, nil
}

// TestServer wraps httptest.Server with the full wiring against a real
// database; the mail and stock-video providers are in-process fakes and the
// metadata provider points at the supplied URL.
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Mailer *MockMailer

	TokenManager *auth.TokenManager
}

// NewTestServer builds the API server the way main does, minus the real
// upstreams. metadataURL may come from httptest.NewServer in the test.
func NewTestServer(db *database.DB, metadataURL string) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	userRepo := repositories.NewUserRepository(db)
	revokeRepo := repositories.NewTokenRevocationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	poolRepo := repositories.NewVideoPoolRepository(db)
	favoriteRepo := repositories.NewFavoriteRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	subtitleRepo := repositories.NewSubtitleRepository(db)

	tokenManager := auth.NewTokenManager("test-secret-32-characters-long!!", 2*time.Hour)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})
	auditLogger := pkglogger.NewAuditLogger(logger)
	loginLimiter := services.NewLoginLimiter(15*time.Minute, 10, logger)
	mailer := &MockMailer{}

	metadataClient := providers.NewMetadataClient(metadataURL, "test-key", logger)

	lockout := services.LockoutConfig{MaxFailedLogins: 5, LockoutDuration: 15 * time.Minute}
	authService := services.NewAuthService(userRepo, revokeRepo, tokenManager, timingDelay, lockout, logger, auditLogger)
	userService := services.NewUserService(userRepo, logger)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, mailer, time.Hour, logger, auditLogger)
	catalogService := services.NewCatalogService(metadataClient, logger)
	poolService := services.NewVideoPoolService(poolRepo, &fakeVideoSearcher{}, services.VideoPoolConfig{
		MinSize:        5,
		MaxSize:        20,
		EvictionMargin: 5,
		SearchPageSize: 5,
	}, logger)
	favoriteService := services.NewFavoriteService(favoriteRepo, logger)
	commentService := services.NewCommentService(commentRepo, logger)
	ratingService := services.NewRatingService(ratingRepo, logger)
	subtitleService := services.NewSubtitleService(subtitleRepo, logger)

	ipConfig := &pkghttp.IPConfig{}
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, resetService, loginLimiter, ipConfig),
		Users:     handlers.NewUserHandler(userService),
		Catalog:   handlers.NewCatalogHandler(catalogService),
		Watch:     handlers.NewWatchHandler(poolService),
		Favorites: handlers.NewFavoriteHandler(favoriteService),
		Comments:  handlers.NewCommentHandler(commentService, userService),
		Ratings:   handlers.NewRatingHandler(ratingService),
		Subtitles: handlers.NewSubtitleHandler(subtitleService, userService),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: "test"}))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, h, tokenManager, revokeRepo)
	})

	return &TestServer{
		Server:       httptest.NewServer(r),
		DB:           db,
		Mailer:       mailer,
		TokenManager: tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a session token
func (ts *TestServer) RequestWithAuth(method, path, sessionToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + sessionToken,
	}
	return ts.Request(method, path, body, headers)
}

// Login runs the login endpoint and returns the session token
func (ts *TestServer) Login(email, password string) (string, *http.Response, error) {
	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp, nil
	}

	defer resp.Body.Close()
	var authResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", resp, fmt.Errorf("failed to parse login response: %w", err)
	}
	return authResp.Token, resp, nil
}

// ParseJSONResponse parses a JSON response body into target
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// MintToken produces a valid session token outside the login flow
func (ts *TestServer) MintToken(user *models.User) (string, error) {
	return ts.TokenManager.GenerateSessionToken(user.ID, user.Email)
}
