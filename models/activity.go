// models/activity.go
package models

import "time"

// QuestActivity is one journal row written after a successful quest transition.
// The journal is append-only and never replayed into quest state.
type QuestActivity struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuestID    string      `gorm:"index;not null" json:"quest_id"`
	GuildID    string      `gorm:"index" json:"guild_id"`
	Action     string      `gorm:"type:varchar(16);not null" json:"action"` // apply | assign | submit | verify | reward
	ActorID    string      `gorm:"index" json:"actor_id"`
	FromStatus QuestStatus `gorm:"type:varchar(16)" json:"from_status"`
	ToStatus   QuestStatus `gorm:"type:varchar(16)" json:"to_status"`
	Note       string      `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
