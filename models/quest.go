// models/quest.go
package models

import (
	"strings"
	"time"
)

// QuestType selects which board tab a quest is listed under
type QuestType string

const (
	QuestTypeGuild  QuestType = "guild"
	QuestTypeIngame QuestType = "ingame"
)

// QuestStatus is the user-facing lifecycle stage of a quest
type QuestStatus string

const (
	QuestStatusNew       QuestStatus = "new"
	QuestStatusPending   QuestStatus = "pending"
	QuestStatusAssigned  QuestStatus = "assigned"
	QuestStatusDelivered QuestStatus = "delivered"
	QuestStatusRewarded  QuestStatus = "rewarded"
	QuestStatusCompleted QuestStatus = "completed"
)

// QuestStatuses lists every status in lifecycle order.
var QuestStatuses = []QuestStatus{
	QuestStatusNew,
	QuestStatusPending,
	QuestStatusAssigned,
	QuestStatusDelivered,
	QuestStatusRewarded,
	QuestStatusCompleted,
}

// Valid reports whether s is one of the known statuses.
func (s QuestStatus) Valid() bool {
	for _, known := range QuestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// QuestPhase is the internal workflow stage, distinct from the status users see
type QuestPhase string

const (
	QuestPhaseCreate   QuestPhase = "create"
	QuestPhaseApply    QuestPhase = "apply"
	QuestPhaseAssign   QuestPhase = "assign"
	QuestPhaseExecute  QuestPhase = "execute"
	QuestPhaseVerify   QuestPhase = "verify"
	QuestPhaseReward   QuestPhase = "reward"
	QuestPhaseComplete QuestPhase = "complete"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// VerificationQuality grades delivered work
type VerificationQuality string

const (
	QualityExcellent        VerificationQuality = "excellent"
	QualityGood             VerificationQuality = "good"
	QualitySatisfactory     VerificationQuality = "satisfactory"
	QualityNeedsImprovement VerificationQuality = "needs_improvement"
)

func (q VerificationQuality) Valid() bool {
	switch q {
	case QualityExcellent, QualityGood, QualitySatisfactory, QualityNeedsImprovement:
		return true
	}
	return false
}

// Quest is a unit of guild work loaded from a fixture file.
// Status and Phase are only ever changed by the workflow transitions in services.
type Quest struct {
	QuestID         string      `json:"questID"`
	GuildID         string      `json:"guildID"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Role            string      `json:"role,omitempty"`
	RoleRequirement string      `json:"roleRequirement,omitempty"`
	Type            QuestType   `json:"type"`
	Status          QuestStatus `json:"status"`
	Phase           QuestPhase  `json:"phase"`
	Goal            string      `json:"goal,omitempty"`
	Requirements    []string    `json:"requirements"`
	Gear            []string    `json:"gear"`
	GuildSupplies   []string    `json:"guildSupplies"`
	Contributors    []string    `json:"contributors"`
	AssignedTo      string      `json:"assignedTo,omitempty"`
	Creator         string      `json:"creator"`
	Created         string      `json:"created"`  // as written in the fixture
	Deadline        string      `json:"deadline"` // as written in the fixture
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
	IsActive        bool        `json:"isActive"`

	Applications []QuestApplication `json:"applications,omitempty"`
	Verification *QuestVerification `json:"verification,omitempty"`
	Rewards      []QuestReward      `json:"rewards,omitempty"`

	// 🪙 Token incentives
	AmountToken1   float64 `json:"amountToken1,omitempty"`
	ExtraTokenGift float64 `json:"extraTokenGift,omitempty"`
	TokenID        string  `json:"tokenID,omitempty"`
	ExtraTokenID   string  `json:"extraTokenID,omitempty"`
}

// MissingRequired returns the JSON names of required fields that are empty.
func (q *Quest) MissingRequired() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("questID", q.QuestID)
	check("guildID", q.GuildID)
	check("title", q.Title)
	check("description", q.Description)
	check("type", string(q.Type))
	check("status", string(q.Status))
	check("phase", string(q.Phase))
	return missing
}

// Clone returns a deep copy so callers can read a quest without holding the store lock.
func (q *Quest) Clone() *Quest {
	if q == nil {
		return nil
	}
	out := *q
	out.Requirements = cloneStrings(q.Requirements)
	out.Gear = cloneStrings(q.Gear)
	out.GuildSupplies = cloneStrings(q.GuildSupplies)
	out.Contributors = cloneStrings(q.Contributors)
	if q.CompletedAt != nil {
		t := *q.CompletedAt
		out.CompletedAt = &t
	}
	if q.Applications != nil {
		out.Applications = append([]QuestApplication(nil), q.Applications...)
	}
	if q.Verification != nil {
		v := *q.Verification
		out.Verification = &v
	}
	if q.Rewards != nil {
		out.Rewards = append([]QuestReward(nil), q.Rewards...)
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// QuestApplication is one member's request to take a quest
type QuestApplication struct {
	MemberID   string            `json:"memberID"`
	MemberName string            `json:"memberName"`
	AppliedAt  time.Time         `json:"appliedAt"`
	Message    string            `json:"message"`
	Status     ApplicationStatus `json:"status"`
}

// QuestVerification is attached when an officer reviews a delivered quest
type QuestVerification struct {
	VerifiedBy string              `json:"verifiedBy"`
	VerifiedAt time.Time           `json:"verifiedAt"`
	Notes      string              `json:"notes"`
	Quality    VerificationQuality `json:"quality"`
	Approved   bool                `json:"approved"`
}
