package background

import (
	"context"
	"log/slog"
	"time"
)

// TokenCleaner removes expired revoked-token rows
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// ResetTokenCleaner removes expired password reset tokens
type ResetTokenCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// LimiterPruner drops login limiter buckets with no recent attempts
type LimiterPruner interface {
	Prune() int
}

// PoolRefresher tops up and trims the video pool
type PoolRefresher interface {
	RefreshPool(ctx context.Context) (int, error)
}

// MaintenanceManager runs the periodic housekeeping tasks: purging expired
// revoked tokens and reset tokens, pruning the in-memory login limiter, and
// refreshing the video pool on its own slower cadence.
type MaintenanceManager struct {
	revokeRepo      TokenCleaner
	resetRepo       ResetTokenCleaner
	limiter         LimiterPruner
	pool            PoolRefresher
	logger          *slog.Logger
	cleanupInterval time.Duration
	refreshInterval time.Duration
	stopCh          chan struct{}
}

// NewMaintenanceManager creates a new maintenance manager
func NewMaintenanceManager(
	revokeRepo TokenCleaner,
	resetRepo ResetTokenCleaner,
	limiter LimiterPruner,
	pool PoolRefresher,
	logger *slog.Logger,
	cleanupInterval time.Duration,
	refreshInterval time.Duration,
) *MaintenanceManager {
	return &MaintenanceManager{
		revokeRepo:      revokeRepo,
		resetRepo:       resetRepo,
		limiter:         limiter,
		pool:            pool,
		logger:          logger,
		cleanupInterval: cleanupInterval,
		refreshInterval: refreshInterval,
		stopCh:          make(chan struct{}),
	}
}

// Start begins the periodic tasks and blocks until Stop or ctx cancellation
func (mm *MaintenanceManager) Start(ctx context.Context) {
	cleanupTicker := time.NewTicker(mm.cleanupInterval)
	defer cleanupTicker.Stop()

	refreshTicker := time.NewTicker(mm.refreshInterval)
	defer refreshTicker.Stop()

	// Run cleanup immediately on startup
	mm.runCleanup(ctx)

	for {
		select {
		case <-cleanupTicker.C:
			mm.runCleanup(ctx)
		case <-refreshTicker.C:
			mm.runPoolRefresh(ctx)
		case <-mm.stopCh:
			mm.logger.Info("maintenance manager stopped")
			return
		case <-ctx.Done():
			mm.logger.Info("maintenance manager context cancelled")
			return
		}
	}
}

func (mm *MaintenanceManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if rows, err := mm.revokeRepo.CleanupExpiredTokens(cleanupCtx); err != nil {
		mm.logger.Error("failed to cleanup expired revoked tokens", slog.Any("error", err))
	} else if rows > 0 {
		mm.logger.Info("expired revoked tokens removed", slog.Int64("rows_deleted", rows))
	}

	if rows, err := mm.resetRepo.CleanupExpired(cleanupCtx); err != nil {
		mm.logger.Error("failed to cleanup expired reset tokens", slog.Any("error", err))
	} else if rows > 0 {
		mm.logger.Info("expired reset tokens removed", slog.Int64("rows_deleted", rows))
	}

	if pruned := mm.limiter.Prune(); pruned > 0 {
		mm.logger.Info("stale limiter buckets pruned", slog.Int("buckets", pruned))
	}
}

func (mm *MaintenanceManager) runPoolRefresh(ctx context.Context) {
	// Pool refresh walks every search term against the provider, so give it
	// more room than the cleanup queries.
	refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	mm.logger.Info("starting video pool refresh")
	added, err := mm.pool.RefreshPool(refreshCtx)
	if err != nil {
		mm.logger.Error("video pool refresh failed", slog.Any("error", err))
		return
	}
	mm.logger.Info("video pool refresh completed", slog.Int("net_added", added))
}

// Stop signals the maintenance manager to stop
func (mm *MaintenanceManager) Stop() {
	close(mm.stopCh)
}
