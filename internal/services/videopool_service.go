package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/lumiflix/lumiflix/internal/models"
	"github.com/lumiflix/lumiflix/internal/providers"
)

// VideoPoolRepository defines the interface for pooled asset persistence
type VideoPoolRepository interface {
	List(ctx context.Context) ([]*models.PooledVideo, error)
	Count(ctx context.Context) (int, error)
	InsertIfAbsent(ctx context.Context, externalID int64, payload json.RawMessage) (bool, error)
	EvictOldest(ctx context.Context, n int) (int64, error)
}

// StockVideoSearcher is the provider surface the pool needs
type StockVideoSearcher interface {
	Search(ctx context.Context, query string, perPage int) ([]providers.StockVideo, error)
}

// poolSearchTerms seed the pool with a spread of stock footage. Order
// matters only for which terms get queried first when the minimum size is
// reached early.
var poolSearchTerms = []string{
	"nature", "city", "ocean", "mountains", "people",
	"technology", "food", "travel", "animals", "night",
	"abstract", "sport", "rain", "forest", "traffic",
}

// backgroundSeedTimeout bounds a seeding run detached from the request
// that noticed the pool running low.
const backgroundSeedTimeout = 5 * time.Minute

// VideoPoolConfig sizes the pool and paces provider calls.
type VideoPoolConfig struct {
	MinSize        int
	MaxSize        int
	EvictionMargin int
	SearchPageSize int
	SearchDelay    time.Duration
}

// VideoPoolService maintains the persisted pool of playable stock assets
// and maps catalog titles onto them deterministically.
//
// Seeding is guarded by a singleflight group: when many requests hit an
// empty pool at once, exactly one fetch sequence runs and the rest wait
// for its result. Provider calls inside a fetch are paced by a token
// bucket so seeding stays inside the provider's quota.
type VideoPoolService struct {
	repo     VideoPoolRepository
	searcher StockVideoSearcher
	cfg      VideoPoolConfig
	pacer    *rate.Limiter
	group    singleflight.Group
	logger   *slog.Logger
}

// NewVideoPoolService creates a new VideoPoolService
func NewVideoPoolService(repo VideoPoolRepository, searcher StockVideoSearcher, cfg VideoPoolConfig, logger *slog.Logger) *VideoPoolService {
	delay := cfg.SearchDelay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return &VideoPoolService{
		repo:     repo,
		searcher: searcher,
		cfg:      cfg,
		pacer:    rate.NewLimiter(rate.Every(delay), 1),
		logger:   logger,
	}
}

// SelectVideo returns the pooled asset for a catalog title. The same title
// always maps to the same asset while pool membership is unchanged: the
// index is the title id modulo the pool size over the stable listing order.
//
// An empty pool triggers seeding and waits for it; if the pool is still
// empty afterwards the title is unplayable right now and callers get
// ErrUnavailable. A pool that is serving but below the healthy minimum
// kicks off seeding in the background instead of making the caller wait.
func (s *VideoPoolService) SelectVideo(ctx context.Context, catalogID int64) (*models.PooledVideo, error) {
	pool, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list video pool", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if len(pool) == 0 {
		if _, err := s.InitializePool(ctx); err != nil {
			s.logger.Warn("video pool seeding failed", slog.Any("error", err))
		}
		pool, err = s.repo.List(ctx)
		if err != nil {
			s.logger.Error("failed to list video pool", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if len(pool) == 0 {
			return nil, models.ErrUnavailable
		}
	} else if len(pool) < s.cfg.MinSize {
		// Detached context: the top-up must not die with the request that
		// happened to notice the shortfall.
		go func() {
			seedCtx, cancel := context.WithTimeout(context.Background(), backgroundSeedTimeout)
			defer cancel()
			if _, err := s.InitializePool(seedCtx); err != nil {
				s.logger.Warn("background video pool seeding failed", slog.Any("error", err))
			}
		}()
	}

	n := int64(len(pool))
	idx := ((catalogID % n) + n) % n
	return pool[idx], nil
}

// InitializePool seeds the pool up to the configured minimum size and
// reports how many assets were inserted. Concurrent callers share one
// seeding run and its count.
func (s *VideoPoolService) InitializePool(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("seed", func() (interface{}, error) {
		return s.seed(ctx)
	})
	inserted, _ := v.(int)
	return inserted, err
}

func (s *VideoPoolService) seed(ctx context.Context) (int, error) {
	// Another request may have finished seeding while we waited for the
	// singleflight slot.
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count >= s.cfg.MinSize {
		return 0, nil
	}

	s.logger.Info("seeding video pool",
		slog.Int("current_size", count),
		slog.Int("min_size", s.cfg.MinSize))

	inserted, err := s.fetchTerms(ctx, func(total int) bool {
		return count+total >= s.cfg.MinSize
	})
	if err != nil {
		return inserted, err
	}

	s.logger.Info("video pool seeded", slog.Int("inserted", inserted))
	return inserted, nil
}

// fetchTerms walks the search terms, pooling every asset not yet present.
// A failing term is skipped so one bad query cannot abort the whole run.
// done is consulted after each term with the running insert total.
func (s *VideoPoolService) fetchTerms(ctx context.Context, done func(total int) bool) (int, error) {
	inserted := 0
	for _, term := range poolSearchTerms {
		if err := s.pacer.Wait(ctx); err != nil {
			return inserted, err
		}

		videos, err := s.searcher.Search(ctx, term, s.cfg.SearchPageSize)
		if err != nil {
			s.logger.Warn("pool search term failed",
				slog.String("term", term),
				slog.Any("error", err))
			continue
		}

		for _, v := range videos {
			added, err := s.repo.InsertIfAbsent(ctx, v.ID, v.Payload)
			if err != nil {
				s.logger.Error("failed to pool video",
					slog.Int64("external_id", v.ID),
					slog.Any("error", err))
				continue
			}
			if added {
				inserted++
			}
		}

		if done != nil && done(inserted) {
			break
		}
	}
	return inserted, nil
}

// RefreshPool evicts the oldest entries when the pool has reached its
// maximum, then tops it back up through the guarded seeding path so a
// refresh racing an on-demand seed still runs one provider fetch sequence.
// Eviction trims below the cap by the configured margin so it does not run
// on every refresh. Returns the net change in pool size.
func (s *VideoPoolService) RefreshPool(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}

	var evicted int64
	if count >= s.cfg.MaxSize {
		target := s.cfg.MaxSize - s.cfg.EvictionMargin
		evicted, err = s.repo.EvictOldest(ctx, count-target)
		if err != nil {
			s.logger.Error("failed to evict pooled videos", slog.Any("error", err))
			return 0, err
		}
		s.logger.Info("video pool trimmed",
			slog.Int64("evicted", evicted),
			slog.Int("target_size", target))
	}

	inserted, err := s.InitializePool(ctx)
	if err != nil {
		return inserted - int(evicted), err
	}

	s.logger.Info("video pool refreshed",
		slog.Int("inserted", inserted),
		slog.Int64("evicted", evicted))
	return inserted - int(evicted), nil
}
