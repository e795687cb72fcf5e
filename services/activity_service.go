// services/activity_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guildhall/models"
)

// OpenDatabase connects to the journal database and migrates its schema.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&models.QuestActivity{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// ActivityService is the append-only quest activity journal.
type ActivityService struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewActivityService(db *gorm.DB, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{DB: db, logger: logger.Named("activity")}
}

func (s *ActivityService) Record(ctx context.Context, activity models.QuestActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	// Stored in UTC so cursor comparisons agree on every driver.
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	activity.CreatedAt = activity.CreatedAt.UTC()
	if err := s.DB.WithContext(ctx).Create(&activity).Error; err != nil {
		return fmt.Errorf("record %s on %s: %w", activity.Action, activity.QuestID, err)
	}
	return nil
}

// ForQuest lists a quest's journal entries, newest first. limit <= 0 means no limit.
func (s *ActivityService) ForQuest(ctx context.Context, questID string, limit int) ([]models.QuestActivity, error) {
	var entries []models.QuestActivity
	q := s.DB.WithContext(ctx).
		Where("quest_id = ?", questID).
		Order("created_at DESC").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity for %s: %w", questID, err)
	}
	return entries, nil
}

// CountByAction summarises a guild's journal.
func (s *ActivityService) CountByAction(ctx context.Context, guildID string) (map[string]int64, error) {
	var rows []struct {
		Action string
		Count  int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.QuestActivity{}).
		Select("action, COUNT(*) AS count").
		Where("guild_id = ?", guildID).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count activity for %s: %w", guildID, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Action] = r.Count
	}
	return out, nil
}

// Since lists a quest's entries created at or after from, oldest first.
func (s *ActivityService) Since(ctx context.Context, questID string, from time.Time) ([]models.QuestActivity, error) {
	var entries []models.QuestActivity
	err := s.DB.WithContext(ctx).
		Where("quest_id = ? AND created_at >= ?", questID, from.UTC()).
		Order("created_at ASC").
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list activity for %s since %s: %w", questID, from.Format(time.RFC3339), err)
	}
	return entries, nil
}

// ActivityCursor follows one quest's journal for a live feed.
type ActivityCursor struct {
	journal *ActivityService
	questID string
	at      time.Time
	seen    map[string]struct{} // IDs already returned with CreatedAt == at
}

// Follow starts a cursor at from; entries stamped at or after it are new.
func (s *ActivityService) Follow(questID string, from time.Time) *ActivityCursor {
	return &ActivityCursor{journal: s, questID: questID, at: from.UTC(), seen: map[string]struct{}{}}
}

// Next returns the entries not yet seen, oldest first. Rows sharing the
// cursor's timestamp are each returned exactly once.
func (c *ActivityCursor) Next(ctx context.Context) ([]models.QuestActivity, error) {
	entries, err := c.journal.Since(ctx, c.questID, c.at)
	if err != nil {
		return nil, err
	}
	fresh := entries[:0]
	for _, e := range entries {
		if _, ok := c.seen[e.ID]; ok {
			continue
		}
		if at := e.CreatedAt.UTC(); at.After(c.at) {
			c.at = at
			clear(c.seen)
		}
		c.seen[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh, nil
}
