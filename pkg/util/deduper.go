package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deduper struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true the first time handler sees emailID within the
// TTL and false for duplicates.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, emailID string) bool {
	key := FormatDedupKey(handler, emailID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// redis 不可用时不阻止处理
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("email_id", emailID),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("email_id", emailID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Release drops the dedup key so a later redelivery is processed again.
func (d *Deduper) Release(ctx context.Context, handler, emailID string) {
	if err := d.rdb.Del(ctx, FormatDedupKey(handler, emailID)).Err(); err != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("handler", handler),
			zap.String("email_id", emailID),
			zap.Error(err),
		)
	}
}

func FormatDedupKey(handler, emailID string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, emailID)
}
