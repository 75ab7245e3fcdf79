package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/link-shortener/internal/repository"
	"github.com/spec-kit/link-shortener/internal/service"
)

// ClickSyncWorker periodically flushes click counts buffered in Redis into
// the urls table. Losing a flush costs at most one interval of counts.
type ClickSyncWorker struct {
	cache    *redis.Client
	urls     repository.URLRepository
	logger   *zap.Logger
	interval time.Duration
}

// NewClickSyncWorker constructs the worker.
func NewClickSyncWorker(cache *redis.Client, urls repository.URLRepository, logger *zap.Logger, interval time.Duration) *ClickSyncWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickSyncWorker{cache: cache, urls: urls, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled, flushing once per interval.
func (w *ClickSyncWorker) Run(ctx context.Context) {
	if w.cache == nil || w.urls == nil {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Flush(context.Background())
			return
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush drains every buffered click key into Postgres.
func (w *ClickSyncWorker) Flush(ctx context.Context) {
	iter := w.cache.Scan(ctx, 0, service.ClickKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := w.cache.GetDel(ctx, key).Result()
		if err != nil {
			if err != redis.Nil {
				w.logger.Warn("drain click key", zap.String("key", key), zap.Error(err))
			}
			continue
		}

		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil || count <= 0 {
			continue
		}

		alias := service.AliasFromClickKey(key)
		if alias == "" {
			continue
		}
		if err := w.urls.AddClicks(ctx, alias, count); err != nil {
			w.logger.Warn("flush clicks", zap.String("alias", alias), zap.Error(err))
			// put the count back so it is retried next interval
			_ = w.cache.IncrBy(ctx, key, count).Err()
		}
	}
	if err := iter.Err(); err != nil {
		w.logger.Warn("scan click keys", zap.Error(err))
	}
}
