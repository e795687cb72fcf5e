// workers/price_worker.go
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PriceLoader refreshes a price list.
type PriceLoader interface {
	Load(ctx context.Context) error
}

// PollPrices loads prices once, then on every tick until ctx is done.
// A failed refresh keeps the previous list and is retried on the next tick.
func PollPrices(ctx context.Context, prices PriceLoader, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("🔁 [PRICES] starting price polling", zap.Duration("interval", interval))

	if err := prices.Load(ctx); err != nil {
		logger.Warn("⚠️ [PRICES] initial price load failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("⏹️ [PRICES] price polling stopped")
			return
		case <-ticker.C:
			if err := prices.Load(ctx); err != nil {
				logger.Error("❌ [PRICES] error polling prices", zap.Error(err))
				continue
			}
			logger.Debug("✅ [PRICES] price list refreshed")
		}
	}
}
