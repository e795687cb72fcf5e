// services/quest_store.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"guildhall/models"
)

// ActivityRecorder receives one entry per successful transition.
type ActivityRecorder interface {
	Record(ctx context.Context, activity models.QuestActivity) error
}

// QuestStore owns the in-memory quest list. Reads return clones; every mutation goes
// through a workflow transition under the write lock.
type QuestStore struct {
	mu       sync.RWMutex
	quests   []*models.Quest
	loading  bool
	err      string
	loadedAt time.Time

	fixtures *FixtureClient
	manifest *Manifest
	journal  ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewQuestStore(fixtures *FixtureClient, manifest *Manifest, logger *zap.Logger) *QuestStore {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestStore{
		fixtures: fixtures,
		manifest: manifest,
		logger:   logger.Named("quests"),
		now:      time.Now,
	}
}

// WithJournal makes the store record transitions to r.
func (s *QuestStore) WithJournal(r ActivityRecorder) *QuestStore {
	s.journal = r
	return s
}

// WithClock replaces the time source used for transition timestamps.
func (s *QuestStore) WithClock(now func() time.Time) *QuestStore {
	s.now = now
	return s
}

// LoadQuests fetches every quest file in the manifest concurrently and replaces the list.
// Files that fail to fetch, decode or validate are logged and left out.
// It returns the number of quests loaded.
func (s *QuestStore) LoadQuests(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	paths := s.manifest.QuestPaths()
	slots := make([]*models.Quest, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			q, err := s.fetchQuest(gctx, p)
			if err != nil {
				s.logger.Warn("⚠️ [QUESTS] skipping quest file", zap.String("path", p), zap.Error(err))
				return nil
			}
			slots[i] = q
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = fmt.Sprintf("failed to load quests: %v", err)
		s.mu.Unlock()
		return 0, fmt.Errorf("load quests: %w", err)
	}

	loaded := make([]*models.Quest, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			loaded = append(loaded, q)
		}
	}

	s.mu.Lock()
	s.quests = loaded
	s.loading = false
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("✅ [QUESTS] quests loaded", zap.Int("loaded", len(loaded)), zap.Int("listed", len(paths)))
	return len(loaded), nil
}

func (s *QuestStore) fetchQuest(ctx context.Context, p string) (*models.Quest, error) {
	body, err := s.fixtures.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	var q models.Quest
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	if missing := q.MissingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("%s missing required fields: %s", p, strings.Join(missing, ", "))
	}
	return &q, nil
}

func (s *QuestStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the store-level error message from the last load, empty when it succeeded.
func (s *QuestStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *QuestStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// All returns a snapshot of every quest in load order.
func (s *QuestStore) All() []*models.Quest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Quest, len(s.quests))
	for i, q := range s.quests {
		out[i] = q.Clone()
	}
	return out
}

func (s *QuestStore) ByID(questID string) (*models.Quest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q := s.find(questID); q != nil {
		return q.Clone(), true
	}
	return nil, false
}

func (s *QuestStore) ByGuild(guildID string) []*models.Quest {
	return FilterByGuild(s.All(), guildID)
}

// ByTab returns the quests listed under tab.
func (s *QuestStore) ByTab(tab QuestTab) []*models.Quest {
	return FilterByTab(s.All(), tab)
}

// Filtered returns the tab's quests narrowed by status; "all" keeps every status.
func (s *QuestStore) Filtered(tab QuestTab, status string) []*models.Quest {
	return FilterByStatus(FilterByTab(s.All(), tab), status)
}

func (s *QuestStore) Stats(tab QuestTab) QuestStats {
	return ComputeStats(s.ByTab(tab))
}

func (s *QuestStore) find(questID string) *models.Quest {
	for _, q := range s.quests {
		if q.QuestID == questID {
			return q
		}
	}
	return nil
}

// transition runs fn against the stored quest under the write lock and journals the result.
func (s *QuestStore) transition(ctx context.Context, questID string, action QuestAction, actorID, note string, fn func(q *models.Quest, now time.Time) error) (*models.Quest, error) {
	now := s.now()

	s.mu.Lock()
	q := s.find(questID)
	if q == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s %s: %w", action, questID, ErrQuestNotFound)
	}
	from := q.Status
	if err := fn(q, now); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	updated := q.Clone()
	s.mu.Unlock()

	s.logger.Info("🔄 [QUESTS] transition",
		zap.String("quest", questID),
		zap.String("action", string(action)),
		zap.String("actor", actorID),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
	)

	if s.journal != nil {
		entry := models.QuestActivity{
			QuestID:    questID,
			GuildID:    updated.GuildID,
			Action:     string(action),
			ActorID:    actorID,
			FromStatus: from,
			ToStatus:   updated.Status,
			Note:       note,
		}
		if err := s.journal.Record(ctx, entry); err != nil {
			s.logger.Error("❌ [QUESTS] failed to journal transition", zap.String("quest", questID), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *QuestStore) Apply(ctx context.Context, questID, memberID, memberName, message string) (*models.Quest, error) {
	return s.transition(ctx, questID, ActionApply, memberID, message, func(q *models.Quest, now time.Time) error {
		return ApplyToQuest(q, memberID, memberName, message, now)
	})
}

func (s *QuestStore) Assign(ctx context.Context, questID, memberID, assignedBy string) (*models.Quest, error) {
	return s.transition(ctx, questID, ActionAssign, assignedBy, "assigned to "+memberID, func(q *models.Quest, _ time.Time) error {
		return AssignQuest(q, memberID)
	})
}

func (s *QuestStore) Submit(ctx context.Context, questID, submittedBy string) (*models.Quest, error) {
	return s.transition(ctx, questID, ActionSubmit, submittedBy, "", func(q *models.Quest, _ time.Time) error {
		return SubmitQuest(q, submittedBy)
	})
}

func (s *QuestStore) Verify(ctx context.Context, questID, verifiedBy, notes string, quality models.VerificationQuality, approved bool) (*models.Quest, error) {
	return s.transition(ctx, questID, ActionVerify, verifiedBy, notes, func(q *models.Quest, now time.Time) error {
		return VerifyQuest(q, verifiedBy, notes, quality, approved, now)
	})
}

func (s *QuestStore) Reward(ctx context.Context, questID string, rewards []models.QuestReward, rewardedBy string) (*models.Quest, error) {
	note := fmt.Sprintf("%d reward(s)", len(rewards))
	return s.transition(ctx, questID, ActionReward, rewardedBy, note, func(q *models.Quest, now time.Time) error {
		return RewardQuest(q, rewards, rewardedBy, now)
	})
}
