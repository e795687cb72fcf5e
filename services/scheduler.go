// services/scheduler.go
package services

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartCacheScheduler purges expired asset cache entries every minute.
// The caller shuts the returned scheduler down.
func (c *FixtureClient) StartCacheScheduler(interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			c.PurgeCache()
		}),
		gocron.WithName("asset-cache-purge"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule cache purge: %w", err)
	}

	sched.Start()
	c.logger.Info("🕒 [CACHE] purge job scheduled", zap.Duration("interval", interval))
	return sched, nil
}
