package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/handlers"
	"github.com/lumiflix/lumiflix/internal/middleware"
)

// Handlers bundles the HTTP handlers the router mounts
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Catalog   *handlers.CatalogHandler
	Watch     *handlers.WatchHandler
	Favorites *handlers.FavoriteHandler
	Comments  *handlers.CommentHandler
	Ratings   *handlers.RatingHandler
	Subtitles *handlers.SubtitleHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	revocationChecker auth.TokenRevocationChecker,
) {
	signupLimit := middleware.RateLimitByIP(middleware.DefaultSignupRateLimit())

	// Public routes. Login carries its own sliding-window limiter inside the
	// handler; signup and the reset flow share the generic per-IP limit.
	router.Post("/auth/login", h.Auth.Login)
	router.With(signupLimit).Post("/auth/signup", h.Auth.Signup)
	router.With(signupLimit).Post("/auth/password-reset/request", h.Auth.RequestPasswordReset)
	router.With(signupLimit).Get("/auth/password-reset/verify", h.Auth.VerifyPasswordReset)
	router.With(signupLimit).Post("/auth/password-reset/confirm", h.Auth.ConfirmPasswordReset)

	// Catalog browsing is public
	router.Get("/movies/popular", h.Catalog.Popular)
	router.Get("/movies/search", h.Catalog.Search)
	router.Get("/movies/{movieID}", h.Catalog.Details)
	router.Get("/movies/{movieID}/comments", h.Comments.ListByMovie)
	router.Get("/movies/{movieID}/rating", h.Ratings.Summary)
	router.Get("/movies/{movieID}/subtitles", h.Subtitles.ListByMovie)
	router.Get("/subtitles/{subtitleID}", h.Subtitles.Download)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, revocationChecker))

		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/users/me", h.Users.Me)
		r.Put("/users/me", h.Users.UpdateMe)
		r.Delete("/users/me", h.Users.DeleteMe)

		r.Get("/watch/{movieID}", h.Watch.Watch)

		r.Get("/favorites", h.Favorites.List)
		r.Post("/favorites", h.Favorites.Add)
		r.Delete("/favorites/{movieID}", h.Favorites.Remove)

		r.Post("/movies/{movieID}/comments", h.Comments.Create)
		r.Put("/comments/{commentID}", h.Comments.Update)
		r.Delete("/comments/{commentID}", h.Comments.Delete)

		r.Put("/movies/{movieID}/rating", h.Ratings.Rate)
		r.Get("/movies/{movieID}/rating/me", h.Ratings.Mine)
		r.Delete("/movies/{movieID}/rating", h.Ratings.Remove)

		r.Post("/movies/{movieID}/subtitles", h.Subtitles.Upload)
		r.Delete("/subtitles/{subtitleID}", h.Subtitles.Delete)
	})
}
