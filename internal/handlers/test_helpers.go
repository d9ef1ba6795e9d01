package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
	"github.com/lumiflix/lumiflix/internal/services"
)

// MockAuthService is a mock implementation of AuthServiceInterface
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	SignupFunc func(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	LogoutFunc func(ctx context.Context, sessionToken string) error
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	return m.LoginFunc(ctx, email, password, ipAddress)
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
	return m.SignupFunc(ctx, email, password, name)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionToken string) error {
	return m.LogoutFunc(ctx, sessionToken)
}

// MockPasswordResetService is a mock implementation of PasswordResetServiceInterface
type MockPasswordResetService struct {
	RequestResetFunc func(ctx context.Context, email string) error
	VerifyResetFunc  func(ctx context.Context, token string) error
	ConfirmResetFunc func(ctx context.Context, token, newPassword string) error
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	return m.RequestResetFunc(ctx, email)
}

func (m *MockPasswordResetService) VerifyReset(ctx context.Context, token string) error {
	return m.VerifyResetFunc(ctx, token)
}

func (m *MockPasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	return m.ConfirmResetFunc(ctx, token, newPassword)
}

// MockLoginRateLimiter is a mock implementation of LoginRateLimiter
type MockLoginRateLimiter struct {
	AllowFunc func(ip string) bool
}

func (m *MockLoginRateLimiter) Allow(ip string) bool {
	if m.AllowFunc == nil {
		return true
	}
	return m.AllowFunc(ip)
}

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	GetUserByIDFunc func(ctx context.Context, id string) (*models.User, error)
	UpdateUserFunc  func(ctx context.Context, id, name string) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, id string) error
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id, name string) (*models.User, error) {
	return m.UpdateUserFunc(ctx, id, name)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	return m.DeleteUserFunc(ctx, id)
}

// MockCommentService is a mock implementation of CommentServiceInterface
type MockCommentService struct {
	ListByMovieFunc func(ctx context.Context, movieID int64) ([]*models.Comment, error)
	CreateFunc      func(ctx context.Context, user *models.User, movieID int64, body string) (*models.Comment, error)
	UpdateFunc      func(ctx context.Context, commentID, actorID, body string) error
	DeleteFunc      func(ctx context.Context, commentID string, actor *models.User) error
}

func (m *MockCommentService) ListByMovie(ctx context.Context, movieID int64) ([]*models.Comment, error) {
	return m.ListByMovieFunc(ctx, movieID)
}

func (m *MockCommentService) Create(ctx context.Context, user *models.User, movieID int64, body string) (*models.Comment, error) {
	return m.CreateFunc(ctx, user, movieID, body)
}

func (m *MockCommentService) Update(ctx context.Context, commentID, actorID, body string) error {
	return m.UpdateFunc(ctx, commentID, actorID, body)
}

func (m *MockCommentService) Delete(ctx context.Context, commentID string, actor *models.User) error {
	return m.DeleteFunc(ctx, commentID, actor)
}

// MockVideoSelector is a mock implementation of VideoSelector
type MockVideoSelector struct {
	SelectVideoFunc func(ctx context.Context, catalogID int64) (*models.PooledVideo, error)
}

func (m *MockVideoSelector) SelectVideo(ctx context.Context, catalogID int64) (*models.PooledVideo, error) {
	return m.SelectVideoFunc(ctx, catalogID)
}

// MockCatalogService is a mock implementation of services.MetadataProvider
type MockCatalogService struct {
	PopularFunc func(ctx context.Context, page int) (*providers.MovieList, error)
	SearchFunc  func(ctx context.Context, query string, page int) (*providers.MovieList, error)
	DetailsFunc func(ctx context.Context, movieID int64) (*providers.MovieDetails, error)
}

func (m *MockCatalogService) Popular(ctx context.Context, page int) (*providers.MovieList, error) {
	return m.PopularFunc(ctx, page)
}

func (m *MockCatalogService) Search(ctx context.Context, query string, page int) (*providers.MovieList, error) {
	return m.SearchFunc(ctx, query, page)
}

func (m *MockCatalogService) Details(ctx context.Context, movieID int64) (*providers.MovieDetails, error) {
	return m.DetailsFunc(ctx, movieID)
}

// withClaims injects session claims into the request context, the way the
// auth middleware would after validating a token.
func withClaims(r *http.Request, userID string) *http.Request {
	claims := &models.TokenClaims{UserID: userID, Email: userID + "@example.com"}
	ctx := context.WithValue(r.Context(), auth.UserContextKey, claims)
	return r.WithContext(ctx)
}

// withBearerToken stores the raw session token in the request context, as
// the auth middleware does for logout.
func withBearerToken(r *http.Request, token string) *http.Request {
	return r.WithContext(auth.ContextWithToken(r.Context(), token))
}

// withURLParam attaches a chi route parameter to the request
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// doRequest runs a handler func against a recorder
func doRequest(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}
