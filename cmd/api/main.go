package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lumiflix/lumiflix/internal/auth"
	"github.com/lumiflix/lumiflix/internal/background"
	"github.com/lumiflix/lumiflix/internal/config"
	"github.com/lumiflix/lumiflix/internal/database"
	"github.com/lumiflix/lumiflix/internal/handlers"
	"github.com/lumiflix/lumiflix/internal/middleware"
	"github.com/lumiflix/lumiflix/internal/providers"
	"github.com/lumiflix/lumiflix/internal/repositories"
	"github.com/lumiflix/lumiflix/internal/routes"
	"github.com/lumiflix/lumiflix/internal/services"
	pkghttp "github.com/lumiflix/lumiflix/pkg/http"
	pkglogger "github.com/lumiflix/lumiflix/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	revokeRepo := repositories.NewTokenRevocationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	poolRepo := repositories.NewVideoPoolRepository(db)
	favoriteRepo := repositories.NewFavoriteRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	subtitleRepo := repositories.NewSubtitleRepository(db)

	// Upstream provider clients
	metadataClient := providers.NewMetadataClient(cfg.Providers.MetadataBaseURL, cfg.Providers.MetadataAPIKey, logger)
	videoClient := providers.NewStockVideoClient(cfg.Providers.VideoBaseURL, cfg.Providers.VideoAPIKey, logger)

	// Auth plumbing
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 100, RandomDelayMs: 100})
	auditLogger := pkglogger.NewAuditLogger(logger)
	loginLimiter := services.NewLoginLimiter(cfg.Auth.LoginRateWindow, cfg.Auth.LoginRateMax, logger)

	mailer, err := services.NewAWSSESMailer(cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.ResetURLBase, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	lockout := services.LockoutConfig{
		MaxFailedLogins: cfg.Auth.MaxFailedLogins,
		LockoutDuration: cfg.Auth.LockoutDuration,
	}
	authService := services.NewAuthService(userRepo, revokeRepo, tokenManager, timingDelay, lockout, logger, auditLogger)
	userService := services.NewUserService(userRepo, logger)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, mailer, cfg.Email.ResetTokenExpiry, logger, auditLogger)
	catalogService := services.NewCatalogService(metadataClient, logger)
	poolService := services.NewVideoPoolService(poolRepo, videoClient, services.VideoPoolConfig{
		MinSize:        cfg.Providers.PoolMinSize,
		MaxSize:        cfg.Providers.PoolMaxSize,
		EvictionMargin: cfg.Providers.PoolEvictionMargin,
		SearchPageSize: cfg.Providers.PoolSearchPageSize,
		SearchDelay:    cfg.Providers.PoolSearchDelay,
	}, logger)
	favoriteService := services.NewFavoriteService(favoriteRepo, logger)
	commentService := services.NewCommentService(commentRepo, logger)
	ratingService := services.NewRatingService(ratingRepo, logger)
	subtitleService := services.NewSubtitleService(subtitleRepo, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
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

	// Background maintenance: token cleanup plus the periodic pool refresh
	maintenance := background.NewMaintenanceManager(
		revokeRepo, resetRepo, loginLimiter, poolService,
		logger, cfg.Server.CleanupInterval, cfg.Providers.PoolRefreshInterval,
	)

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSAllowedOrigins)))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	router.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, h, tokenManager, revokeRepo)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	maintenanceCtx, maintenanceCancel := context.WithCancel(context.Background())
	defer maintenanceCancel()
	go maintenance.Start(maintenanceCtx)

	// Seed the video pool in the background so startup does not block on the
	// provider; the first watch request falls back to on-demand seeding.
	go func() {
		seedCtx, cancel := context.WithTimeout(maintenanceCtx, 10*time.Minute)
		defer cancel()
		if _, err := poolService.InitializePool(seedCtx); err != nil {
			logger.Warn("initial video pool seeding failed", slog.Any("error", err))
		}
	}()

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	maintenanceCancel()
	maintenance.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
