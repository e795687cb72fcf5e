package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhall/models"
)

func newTestJournal(t *testing.T) *ActivityService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewActivityService(db, nil)
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	_, err := OpenDatabase("mysql", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestActivityService_RecordAndList(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	for i, action := range []string{"apply", "assign", "submit"} {
		require.NoError(t, journal.Record(ctx, models.QuestActivity{
			QuestID:   "g1_q0001",
			GuildID:   "guild-1",
			Action:    action,
			ActorID:   "m1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, journal.Record(ctx, models.QuestActivity{QuestID: "g1_q0002", GuildID: "guild-1", Action: "apply"}))

	entries, err := journal.ForQuest(ctx, "g1_q0001", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "submit", entries[0].Action, "newest first")
	assert.Equal(t, "apply", entries[2].Action)
	for _, e := range entries {
		_, err := uuid.Parse(e.ID)
		assert.NoError(t, err)
	}

	limited, err := journal.ForQuest(ctx, "g1_q0001", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	counts, err := journal.CountByAction(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"apply": 2, "assign": 1, "submit": 1}, counts)
}

func TestQuestStore_WithActivityService(t *testing.T) {
	journal := newTestJournal(t)
	store := NewQuestStore(nil, nil, nil).WithJournal(journal)
	seedQuests(store, newQuest("q1", models.QuestTypeGuild, models.QuestStatusNew))
	ctx := context.Background()

	_, err := store.Apply(ctx, "q1", "m1", "Alice", "hi")
	require.NoError(t, err)
	_, err = store.Assign(ctx, "q1", "m1", "o1")
	require.NoError(t, err)

	entries, err := journal.ForQuest(ctx, "q1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	actions := []string{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []string{"apply", "assign"}, actions)
}

func TestActivityService_Since(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{"apply", "assign", "submit"} {
		require.NoError(t, journal.Record(ctx, models.QuestActivity{
			QuestID: "q1", Action: action, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := journal.Since(ctx, "q1", base)
	require.NoError(t, err)
	require.Len(t, entries, 3, "the bound is inclusive")
	assert.Equal(t, "apply", entries[0].Action)

	entries, err = journal.Since(ctx, "q1", base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "assign", entries[0].Action)
	assert.Equal(t, "submit", entries[1].Action)

	entries, err = journal.Since(ctx, "q1", base.In(time.FixedZone("UTC+9", 9*3600)).Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "cursor zone does not matter")

	entries, err = journal.Since(ctx, "q1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivityService_RecordStoresUTC(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	local := time.Date(2025, 2, 1, 21, 0, 0, 0, time.FixedZone("UTC+9", 9*3600))

	require.NoError(t, journal.Record(ctx, models.QuestActivity{QuestID: "q1", Action: "apply", CreatedAt: local}))
	require.NoError(t, journal.Record(ctx, models.QuestActivity{QuestID: "q1", Action: "assign"}))

	entries, err := journal.Since(ctx, "q1", time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, local.Equal(entries[0].CreatedAt))
	assert.False(t, entries[1].CreatedAt.IsZero())
}

func TestActivityCursor_SameTimestampEntriesAreNotSkipped(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	record := func(id, action string, when time.Time) {
		t.Helper()
		require.NoError(t, journal.Record(ctx, models.QuestActivity{ID: id, QuestID: "q1", Action: action, CreatedAt: when}))
	}
	actions := func(entries []models.QuestActivity) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Action
		}
		return out
	}

	cursor := journal.Follow("q1", at.Add(-time.Second))
	record("a", "apply", at)
	record("b", "assign", at)

	entries, err := cursor.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apply", "assign"}, actions(entries))

	// Committed later but stamped in the same instant as the last batch.
	record("c", "submit", at)
	entries, err = cursor.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"submit"}, actions(entries))

	entries, err = cursor.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	record("d", "verify", at.Add(time.Millisecond))
	record("e", "reward", at.Add(time.Millisecond))
	entries, err = cursor.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"verify", "reward"}, actions(entries))

	entries, err = cursor.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	record("f", "apply", at)
	entries, err = cursor.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "older than the cursor")
}
