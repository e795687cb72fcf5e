// models/guild.go
package models

import "strings"

// NotificationSettings is part of a guild's settings block
type NotificationSettings struct {
	Email     bool   `json:"email"`
	Push      bool   `json:"push"`
	InApp     bool   `json:"inApp"`
	Frequency string `json:"frequency"`
}

type GuildSettings struct {
	AllowPublicViewing     bool                 `json:"allowPublicViewing"`
	RequireApprovalForJoin bool                 `json:"requireApprovalForJoin"`
	MaxMembers             int                  `json:"maxMembers"`
	AutoAssignRole         string               `json:"autoAssignRole"`
	NotificationSettings   NotificationSettings `json:"notificationSettings"`
}

// GuildDaos names the guild's governance tokens
type GuildDaos struct {
	Token1    string `json:"token1"`
	Token2    string `json:"token2"`
	TotalVote string `json:"totalvote"`
}

// GuildProfile is loaded from guildprofiles/<id>_profile.json
type GuildProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Logo        string            `json:"logo"`
	Theme       string            `json:"theme"`
	Message     string            `json:"message"`
	Settings    GuildSettings     `json:"settings"`
	Roles       map[string]string `json:"roles"` // role id → display name
	Daos        GuildDaos         `json:"daos"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// MemberProfile is loaded from memberprofiles/<prefix>_<name>_<role>.json
type MemberProfile struct {
	MemberID          string  `json:"memberID"`
	WalletAddress     string  `json:"walletAddress"`
	Guild             string  `json:"guild"`
	Role              string  `json:"role"`
	Username          string  `json:"username"`
	Avatar            string  `json:"avatar"`
	Email             string  `json:"email"`
	Notification      []bool  `json:"notification"`
	LastActive        string  `json:"lastActive"`
	JoinedAt          string  `json:"joinedAt"`
	IsActive          bool    `json:"isActive"`
	ContributionScore float64 `json:"contributionScore"`
	Bio               string  `json:"bio"`
}

// Default member roles, lowest rank first
const (
	RoleProspect = "prospect"
	RoleMember   = "member"
	RoleOfficer  = "officer"
	RoleCouncil  = "council"
	RoleFounder  = "founder"
)

// GuildPrefix maps "guild-1" to "g1", the prefix used by member and token fixture names.
func GuildPrefix(guildID string) string {
	if rest, ok := strings.CutPrefix(guildID, "guild-"); ok && rest != "" {
		return "g" + rest
	}
	return guildID
}
