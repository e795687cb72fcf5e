// services/quest_workflow.go
package services

import (
	"errors"
	"fmt"
	"time"

	"guildhall/models"
)

var (
	ErrQuestNotFound     = errors.New("quest not found")
	ErrInvalidTransition = errors.New("invalid quest transition")
	ErrInvalidRewards    = errors.New("invalid rewards")
)

// QuestAction names a workflow transition.
type QuestAction string

const (
	ActionApply  QuestAction = "apply"
	ActionAssign QuestAction = "assign"
	ActionSubmit QuestAction = "submit"
	ActionVerify QuestAction = "verify"
	ActionReward QuestAction = "reward"
)

// TransitionError reports a guard failure. The quest is left unchanged.
type TransitionError struct {
	QuestID string
	Action  QuestAction
	Status  models.QuestStatus
	Reason  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s quest %s in status %q: %s", e.Action, e.QuestID, e.Status, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func guardFailed(q *models.Quest, action QuestAction, reason string) error {
	return &TransitionError{QuestID: q.QuestID, Action: action, Status: q.Status, Reason: reason}
}

// ApplyToQuest appends a pending application. Several members may apply before assignment.
func ApplyToQuest(q *models.Quest, memberID, memberName, message string, now time.Time) error {
	if q.Status != models.QuestStatusNew && q.Status != models.QuestStatusPending {
		return guardFailed(q, ActionApply, "quest is not open for applications")
	}
	q.Applications = append(q.Applications, models.QuestApplication{
		MemberID:   memberID,
		MemberName: memberName,
		AppliedAt:  now,
		Message:    message,
		Status:     models.ApplicationPending,
	})
	q.Status = models.QuestStatusPending
	q.Phase = models.QuestPhaseApply
	return nil
}

// AssignQuest hands the quest to memberID and approves that member's first application.
// Other applications stay pending.
func AssignQuest(q *models.Quest, memberID string) error {
	if q.Status != models.QuestStatusPending {
		return guardFailed(q, ActionAssign, "quest has no pending applications")
	}
	q.AssignedTo = memberID
	q.Status = models.QuestStatusAssigned
	q.Phase = models.QuestPhaseAssign
	for i := range q.Applications {
		if q.Applications[i].MemberID == memberID {
			q.Applications[i].Status = models.ApplicationApproved
			break
		}
	}
	return nil
}

func SubmitQuest(q *models.Quest, submittedBy string) error {
	if q.Status != models.QuestStatusAssigned {
		return guardFailed(q, ActionSubmit, "quest is not assigned")
	}
	if q.AssignedTo != submittedBy {
		return guardFailed(q, ActionSubmit, "only the assignee can submit")
	}
	q.Status = models.QuestStatusDelivered
	q.Phase = models.QuestPhaseExecute
	return nil
}

// VerifyQuest records the review. A rejected delivery goes back to the assignee.
func VerifyQuest(q *models.Quest, verifiedBy, notes string, quality models.VerificationQuality, approved bool, now time.Time) error {
	if q.Status != models.QuestStatusDelivered {
		return guardFailed(q, ActionVerify, "quest has not been delivered")
	}
	q.Verification = &models.QuestVerification{
		VerifiedBy: verifiedBy,
		VerifiedAt: now,
		Notes:      notes,
		Quality:    quality,
		Approved:   approved,
	}
	if approved {
		q.Status = models.QuestStatusRewarded
		q.Phase = models.QuestPhaseReward
	} else {
		q.Status = models.QuestStatusAssigned
		q.Phase = models.QuestPhaseExecute
	}
	return nil
}

// RewardQuest replaces the quest's rewards and completes it.
// Rewards without a distribution stamp get rewardedBy and now.
func RewardQuest(q *models.Quest, rewards []models.QuestReward, rewardedBy string, now time.Time) error {
	if q.Status != models.QuestStatusRewarded {
		return guardFailed(q, ActionReward, "quest has not been approved")
	}
	if len(rewards) == 0 {
		return fmt.Errorf("reward quest %s: at least one reward is required: %w", q.QuestID, ErrInvalidRewards)
	}
	for i, r := range rewards {
		if r.Grant == nil {
			return fmt.Errorf("reward quest %s: reward %d has no grant: %w", q.QuestID, i, ErrInvalidRewards)
		}
	}
	stamped := make([]models.QuestReward, len(rewards))
	for i, r := range rewards {
		if r.DistributedAt.IsZero() {
			r.DistributedAt = now
		}
		if r.DistributedBy == "" {
			r.DistributedBy = rewardedBy
		}
		stamped[i] = r
	}
	q.Rewards = stamped
	q.Status = models.QuestStatusCompleted
	q.Phase = models.QuestPhaseComplete
	completed := now
	q.CompletedAt = &completed
	return nil
}
