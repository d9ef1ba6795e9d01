package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
	pkglogger "github.com/lumiflix/lumiflix/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc           func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdateLoginStateFunc func(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error
	UpdatePasswordFunc   func(ctx context.Context, id, passwordHash string) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	if m.UpdateLoginStateFunc != nil {
		return m.UpdateLoginStateFunc(ctx, id, failedAttempts, lockedUntil)
	}
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTokenRevocationRepository implements TokenRevocationRepository for testing
type MockTokenRevocationRepository struct {
	RevokeTokenFunc    func(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error
	IsTokenRevokedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockTokenRevocationRepository) RevokeToken(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, jti, userID, expiresAt, reason)
	}
	return nil
}

func (m *MockTokenRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsTokenRevokedFunc != nil {
		return m.IsTokenRevokedFunc(ctx, jti)
	}
	return false, nil
}

// MockPasswordResetRepository implements PasswordResetRepository for testing
type MockPasswordResetRepository struct {
	CreateFunc         func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error)
	GetByTokenHashFunc func(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkAsUsedFunc     func(ctx context.Context, id string) error
	CleanupExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, tokenHash, expiresAt)
	}
	return &models.PasswordResetToken{ID: "token_123", UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
}

func (m *MockPasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	if m.GetByTokenHashFunc != nil {
		return m.GetByTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockPasswordResetRepository) MarkAsUsed(ctx context.Context, id string) error {
	if m.MarkAsUsedFunc != nil {
		return m.MarkAsUsedFunc(ctx, id)
	}
	return nil
}

func (m *MockPasswordResetRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}

// MockMailer implements Mailer for testing
type MockMailer struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string, expiresAt time.Time) error
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token, expiresAt)
	}
	return nil
}

// MockStockVideoSearcher implements StockVideoSearcher for testing
type MockStockVideoSearcher struct {
	SearchFunc func(ctx context.Context, query string, perPage int) ([]providers.StockVideo, error)
}

func (m *MockStockVideoSearcher) Search(ctx context.Context, query string, perPage int) ([]providers.StockVideo, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, perPage)
	}
	return nil, nil
}

// MockMetadataProvider implements MetadataProvider for testing
type MockMetadataProvider struct {
	PopularFunc func(ctx context.Context, page int) (*providers.MovieList, error)
	SearchFunc  func(ctx context.Context, query string, page int) (*providers.MovieList, error)
	DetailsFunc func(ctx context.Context, movieID int64) (*providers.MovieDetails, error)
}

func (m *MockMetadataProvider) Popular(ctx context.Context, page int) (*providers.MovieList, error) {
	if m.PopularFunc != nil {
		return m.PopularFunc(ctx, page)
	}
	return &providers.MovieList{}, nil
}

func (m *MockMetadataProvider) Search(ctx context.Context, query string, page int) (*providers.MovieList, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, page)
	}
	return &providers.MovieList{}, nil
}

func (m *MockMetadataProvider) Details(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
	if m.DetailsFunc != nil {
		return m.DetailsFunc(ctx, movieID)
	}
	return nil, models.ErrNotFound
}

// FakeVideoPoolRepository is an in-memory pool keyed by external id,
// preserving insertion order. Safe for concurrent use.
type FakeVideoPoolRepository struct {
	mu     sync.Mutex
	videos []*models.PooledVideo
	seen   map[int64]bool
}

func NewFakeVideoPoolRepository() *FakeVideoPoolRepository {
	return &FakeVideoPoolRepository{seen: make(map[int64]bool)}
}

func (f *FakeVideoPoolRepository) List(ctx context.Context) ([]*models.PooledVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.PooledVideo, len(f.videos))
	copy(out, f.videos)
	return out, nil
}

func (f *FakeVideoPoolRepository) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.videos), nil
}

func (f *FakeVideoPoolRepository) InsertIfAbsent(ctx context.Context, externalID int64, payload json.RawMessage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[externalID] {
		return false, nil
	}
	f.seen[externalID] = true
	f.videos = append(f.videos, &models.PooledVideo{
		ID:         "pooled_" + time.Now().Format("150405.000000000"),
		ExternalID: externalID,
		Payload:    payload,
		CreatedAt:  time.Now(),
	})
	return true, nil
}

func (f *FakeVideoPoolRepository) EvictOldest(ctx context.Context, n int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 {
		return 0, nil
	}
	if n > len(f.videos) {
		n = len(f.videos)
	}
	for _, v := range f.videos[:n] {
		delete(f.seen, v.ExternalID)
	}
	f.videos = f.videos[n:]
	return int64(n), nil
}

// NewTestUser creates an unlocked active user for tests
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      "user",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithPassword creates a user with the given password hash
func NewTestUserWithPassword(id, email, name, passwordHash string) *models.User {
	user := NewTestUser(id, email, name)
	user.PasswordHash = passwordHash
	return user
}

// NewTestUserLocked creates a user whose lockout is still active
func NewTestUserLocked(id, email, name string) *models.User {
	user := NewTestUser(id, email, name)
	lockedUntil := time.Now().Add(10 * time.Minute)
	user.FailedAttempts = 5
	user.LockedUntil = &lockedUntil
	return user
}
