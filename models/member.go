// models/member.go
package models

// Permissions is the per-role capability set from a guild permission table
type Permissions struct {
	CanViewGuild     bool `json:"canViewGuild"`
	CanEditGuild     bool `json:"canEditGuild"`
	CanManageMembers bool `json:"canManageMembers"`
	CanManageRoles   bool `json:"canManageRoles"`
	CanAccessVault   bool `json:"canAccessVault"`
	CanAccessDAO     bool `json:"canAccessDAO"`
	CanCreateEvents  bool `json:"canCreateEvents"`
	CanManageQuests  bool `json:"canManageQuests"`
	CanAccessArmory  bool `json:"canAccessArmory"`
	CanAccessG2P     bool `json:"canAccessG2P"`
}

// Has looks a permission up by its JSON name; unknown names are denied.
func (p Permissions) Has(name string) bool {
	switch name {
	case "canViewGuild":
		return p.CanViewGuild
	case "canEditGuild":
		return p.CanEditGuild
	case "canManageMembers":
		return p.CanManageMembers
	case "canManageRoles":
		return p.CanManageRoles
	case "canAccessVault":
		return p.CanAccessVault
	case "canAccessDAO":
		return p.CanAccessDAO
	case "canCreateEvents":
		return p.CanCreateEvents
	case "canManageQuests":
		return p.CanManageQuests
	case "canAccessArmory":
		return p.CanAccessArmory
	case "canAccessG2P":
		return p.CanAccessG2P
	}
	return false
}

// GuildPermission is one row of guildpermission/<guild>_permissiontable.json
type GuildPermission struct {
	Role        string      `json:"role"`
	Permissions Permissions `json:"permissions"`
}

// DefaultGuildPermission is used for roles missing from the table: view only.
func DefaultGuildPermission(role string) GuildPermission {
	return GuildPermission{
		Role:        role,
		Permissions: Permissions{CanViewGuild: true},
	}
}

// TokenMeta is loaded from guildtoken/<guild>_tokenN.json
type TokenMeta struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// MemberTokenBalance is a member's holding of their guild's two tokens
type MemberTokenBalance struct {
	Token1       float64 `json:"token1"`
	Token2       float64 `json:"token2"`
	Token1Name   string  `json:"token1Name"`
	Token2Name   string  `json:"token2Name"`
	Token1Symbol string  `json:"token1Symbol"`
	Token2Symbol string  `json:"token2Symbol"`
	LastUpdated  string  `json:"lastUpdated"`
}
