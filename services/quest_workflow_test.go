package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhall/models"
)

var t0 = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func TestApplyToQuest_AppendsPendingApplications(t *testing.T) {
	q := newQuest("g1_q0001", models.QuestTypeIngame, models.QuestStatusNew)

	require.NoError(t, ApplyToQuest(q, "m1", "Alice", "hi", t0))
	require.NoError(t, ApplyToQuest(q, "m2", "Bob", "me too", t0.Add(time.Minute)))

	assert.Equal(t, models.QuestStatusPending, q.Status)
	assert.Equal(t, models.QuestPhaseApply, q.Phase)
	require.Len(t, q.Applications, 2)
	for _, a := range q.Applications {
		assert.Equal(t, models.ApplicationPending, a.Status)
	}
	assert.Equal(t, "m1", q.Applications[0].MemberID)
	assert.Equal(t, "hi", q.Applications[0].Message)
	assert.Equal(t, t0, q.Applications[0].AppliedAt)
}

func TestAssignQuest_ApprovesChosenApplicant(t *testing.T) {
	q := newQuest("g1_q0001", models.QuestTypeIngame, models.QuestStatusNew)
	require.NoError(t, ApplyToQuest(q, "m1", "Alice", "hi", t0))
	require.NoError(t, ApplyToQuest(q, "m2", "Bob", "", t0))

	require.NoError(t, AssignQuest(q, "m1"))

	assert.Equal(t, models.QuestStatusAssigned, q.Status)
	assert.Equal(t, models.QuestPhaseAssign, q.Phase)
	assert.Equal(t, "m1", q.AssignedTo)
	assert.Equal(t, models.ApplicationApproved, q.Applications[0].Status)
	assert.Equal(t, models.ApplicationPending, q.Applications[1].Status)
}

func TestTransitions_GuardFailureLeavesQuestUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		status models.QuestStatus
		run    func(q *models.Quest) error
		action QuestAction
	}{
		{"apply after assignment", models.QuestStatusAssigned, func(q *models.Quest) error {
			return ApplyToQuest(q, "m1", "A", "", t0)
		}, ActionApply},
		{"assign new quest", models.QuestStatusNew, func(q *models.Quest) error {
			return AssignQuest(q, "m1")
		}, ActionAssign},
		{"assign delivered quest", models.QuestStatusDelivered, func(q *models.Quest) error {
			return AssignQuest(q, "m1")
		}, ActionAssign},
		{"submit pending quest", models.QuestStatusPending, func(q *models.Quest) error {
			return SubmitQuest(q, "m1")
		}, ActionSubmit},
		{"verify assigned quest", models.QuestStatusAssigned, func(q *models.Quest) error {
			return VerifyQuest(q, "o1", "", models.QualityGood, true, t0)
		}, ActionVerify},
		{"reward delivered quest", models.QuestStatusDelivered, func(q *models.Quest) error {
			return RewardQuest(q, []models.QuestReward{{Grant: models.RecognitionGrant{}}}, "o1", t0)
		}, ActionReward},
		{"reward completed quest", models.QuestStatusCompleted, func(q *models.Quest) error {
			return RewardQuest(q, []models.QuestReward{{Grant: models.RecognitionGrant{}}}, "o1", t0)
		}, ActionReward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQuest("g1_q0009", models.QuestTypeGuild, tt.status)
			q.AssignedTo = "m9"
			before := q.Clone()

			err := tt.run(q)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.action, te.Action)
			assert.Equal(t, tt.status, te.Status)
			assert.Equal(t, before, q)
		})
	}
}

func TestSubmitQuest_OnlyAssignee(t *testing.T) {
	q := newQuest("g1_q0004", models.QuestTypeIngame, models.QuestStatusAssigned)
	q.AssignedTo = "m1"

	err := SubmitQuest(q, "m2")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.QuestStatusAssigned, q.Status)

	require.NoError(t, SubmitQuest(q, "m1"))
	assert.Equal(t, models.QuestStatusDelivered, q.Status)
	assert.Equal(t, models.QuestPhaseExecute, q.Phase)
}

func TestVerifyQuest(t *testing.T) {
	for _, approved := range []bool{true, false} {
		q := newQuest("g1_q0005", models.QuestTypeIngame, models.QuestStatusDelivered)

		require.NoError(t, VerifyQuest(q, "o1", "notes", models.QualityExcellent, approved, t0))

		require.NotNil(t, q.Verification)
		assert.Equal(t, "o1", q.Verification.VerifiedBy)
		assert.Equal(t, approved, q.Verification.Approved)
		if approved {
			assert.Equal(t, models.QuestStatusRewarded, q.Status)
			assert.Equal(t, models.QuestPhaseReward, q.Phase)
		} else {
			assert.Equal(t, models.QuestStatusAssigned, q.Status)
			assert.Equal(t, models.QuestPhaseExecute, q.Phase)
		}
	}
}

func TestRewardQuest_StampsRewardsAndCompletes(t *testing.T) {
	q := newQuest("g1_q0010", models.QuestTypeIngame, models.QuestStatusRewarded)
	earlier := t0.Add(-time.Hour)
	rewards := []models.QuestReward{
		{Grant: models.TokenGrant{Amount: 140, TokenID: "g1-token1"}},
		{Grant: models.BadgeGrant{BadgeID: "scout"}, DistributedAt: earlier, DistributedBy: "council"},
	}

	require.NoError(t, RewardQuest(q, rewards, "o1", t0))

	assert.Equal(t, models.QuestStatusCompleted, q.Status)
	assert.Equal(t, models.QuestPhaseComplete, q.Phase)
	require.NotNil(t, q.CompletedAt)
	assert.Equal(t, t0, *q.CompletedAt)
	require.Len(t, q.Rewards, 2)
	assert.Equal(t, t0, q.Rewards[0].DistributedAt)
	assert.Equal(t, "o1", q.Rewards[0].DistributedBy)
	assert.Equal(t, earlier, q.Rewards[1].DistributedAt)
	assert.Equal(t, "council", q.Rewards[1].DistributedBy)
	assert.True(t, rewards[0].DistributedAt.IsZero(), "caller's slice is not modified")
}

func TestRewardQuest_ReplacesExistingRewards(t *testing.T) {
	q := newQuest("g1_q0010", models.QuestTypeIngame, models.QuestStatusRewarded)
	q.Rewards = []models.QuestReward{{Grant: models.BadgeGrant{BadgeID: "stale"}, DistributedAt: t0, DistributedBy: "o0"}}

	require.NoError(t, RewardQuest(q, []models.QuestReward{{Grant: models.RecognitionGrant{}}}, "o1", t0))

	require.Len(t, q.Rewards, 1)
	assert.Equal(t, models.RecognitionGrant{}, q.Rewards[0].Grant)
}

func TestRewardQuest_RejectsMissingGrants(t *testing.T) {
	tests := []struct {
		name    string
		rewards []models.QuestReward
	}{
		{name: "nil slice", rewards: nil},
		{name: "empty slice", rewards: []models.QuestReward{}},
		{name: "reward without grant", rewards: []models.QuestReward{{}}},
		{name: "second reward without grant", rewards: []models.QuestReward{
			{Grant: models.TokenGrant{Amount: 1}},
			{DistributedBy: "o1"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQuest("g1_q0010", models.QuestTypeIngame, models.QuestStatusRewarded)
			before := *q.Clone()

			err := RewardQuest(q, tt.rewards, "o1", t0)
			require.ErrorIs(t, err, ErrInvalidRewards)
			assert.False(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, before, *q, "quest unchanged")
		})
	}
}

func TestFullLifecycle(t *testing.T) {
	q := newQuest("g1_q0001", models.QuestTypeIngame, models.QuestStatusNew)

	require.NoError(t, ApplyToQuest(q, "m1", "Alice", "hi", t0))
	require.NoError(t, AssignQuest(q, "m1"))
	assert.Equal(t, models.QuestStatusAssigned, q.Status)
	assert.Equal(t, "m1", q.AssignedTo)

	require.NoError(t, SubmitQuest(q, "m1"))
	require.NoError(t, VerifyQuest(q, "o1", "", models.QualityGood, true, t0))
	require.NoError(t, RewardQuest(q, []models.QuestReward{{Grant: models.TokenGrant{Amount: 5}}}, "o1", t0))

	assert.Equal(t, models.QuestStatusCompleted, q.Status)
	assert.NotEmpty(t, q.Rewards)
	assert.NotNil(t, q.CompletedAt)
}
