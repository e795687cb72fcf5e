// workers/guild_sync_worker.go
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"guildhall/models"
)

// GuildLoader reloads the guild directory.
type GuildLoader interface {
	LoadAvailableGuilds(ctx context.Context) []models.GuildProfile
}

// GuildSyncWorker keeps the guild directory in step with the fixture source.
type GuildSyncWorker struct {
	guilds   GuildLoader
	interval time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

func NewGuildSyncWorker(guilds GuildLoader, interval time.Duration, logger *zap.Logger) *GuildSyncWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuildSyncWorker{
		guilds:   guilds,
		interval: interval,
		logger:   logger.Named("guild-sync"),
		done:     make(chan struct{}),
	}
}

// Start runs the worker in the background until ctx is done. Done is closed on exit.
func (w *GuildSyncWorker) Start(ctx context.Context) {
	w.logger.Info("🔁 [SYNC] starting guild sync worker", zap.Duration("interval", w.interval))
	go w.run(ctx)
}

func (w *GuildSyncWorker) Done() <-chan struct{} { return w.done }

func (w *GuildSyncWorker) run(ctx context.Context) {
	defer close(w.done)

	w.sync(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sync(ctx)
		case <-ctx.Done():
			w.logger.Info("⏹️ [SYNC] guild sync worker stopped")
			return
		}
	}
}

func (w *GuildSyncWorker) sync(ctx context.Context) {
	guilds := w.guilds.LoadAvailableGuilds(ctx)
	if len(guilds) == 0 {
		w.logger.Warn("⚠️ [SYNC] no guild profiles could be loaded")
		return
	}
	w.logger.Debug("✅ [SYNC] guild directory refreshed", zap.Int("guilds", len(guilds)))
}
