// services/guild_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"guildhall/models"
)

var (
	ErrGuildNotFound      = errors.New("guild not found")
	ErrNotGuildMember     = errors.New("wallet address not found in guild member list")
	ErrMemberNotFound     = errors.New("member profile not found")
	ErrMemberDataMismatch = errors.New("member profile data mismatch")
)

// GuildService reads guild profiles and rosters from fixtures.
// Profiles, member lists and member profiles are reference data and go through the asset cache.
type GuildService struct {
	fixtures *FixtureClient
	manifest *Manifest
	logger   *zap.Logger

	mu     sync.RWMutex
	guilds []models.GuildProfile
}

func NewGuildService(fixtures *FixtureClient, manifest *Manifest, logger *zap.Logger) *GuildService {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuildService{fixtures: fixtures, manifest: manifest, logger: logger.Named("guilds")}
}

// LoadAvailableGuilds fetches every guild profile in the manifest. Failed files are skipped.
func (s *GuildService) LoadAvailableGuilds(ctx context.Context) []models.GuildProfile {
	guilds := make([]models.GuildProfile, 0, len(s.manifest.GuildProfiles))
	for _, file := range s.manifest.GuildProfiles {
		var g models.GuildProfile
		if err := s.fixtures.GetCachedJSON(ctx, guildProfilePath(file), &g); err != nil {
			s.logger.Warn("⚠️ [GUILDS] failed to load guild profile", zap.String("file", file), zap.Error(err))
			continue
		}
		guilds = append(guilds, g)
	}

	s.mu.Lock()
	s.guilds = guilds
	s.mu.Unlock()

	return slices.Clone(guilds)
}

// Guilds returns the profiles from the last LoadAvailableGuilds.
func (s *GuildService) Guilds() []models.GuildProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.guilds)
}

func (s *GuildService) Guild(guildID string) (models.GuildProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guilds {
		if g.ID == guildID {
			return g, true
		}
	}
	return models.GuildProfile{}, false
}

// MemberList returns the wallet addresses on a guild's member list.
func (s *GuildService) MemberList(ctx context.Context, guildID string) ([]string, error) {
	var wallets []string
	if err := s.fixtures.GetCachedJSON(ctx, memberListPath(guildID), &wallets); err != nil {
		return nil, fmt.Errorf("failed to load guild members for %s: %w", guildID, err)
	}
	return wallets, nil
}

// LoadGuildMembers resolves the roster: for each candidate name the first profile, in role
// order, whose wallet is on the member list.
func (s *GuildService) LoadGuildMembers(ctx context.Context, guildID string) ([]models.MemberProfile, error) {
	wallets, err := s.MemberList(ctx, guildID)
	if err != nil {
		return nil, err
	}

	members := make([]models.MemberProfile, 0, len(s.manifest.MemberNames))
	for _, name := range s.manifest.MemberNames {
		for _, role := range s.manifest.MemberRoles {
			p := memberProfilePath(guildID, name, role)
			var m models.MemberProfile
			if err := s.fixtures.GetCachedJSON(ctx, p, &m); err != nil {
				if !errors.Is(err, ErrFixtureNotFound) {
					s.logger.Warn("⚠️ [GUILDS] failed to load member profile", zap.String("path", p), zap.Error(err))
				}
				continue
			}
			if slices.Contains(wallets, m.WalletAddress) {
				members = append(members, m)
				break
			}
		}
	}

	s.logger.Debug("[GUILDS] roster loaded", zap.String("guild", guildID), zap.Int("members", len(members)))
	return members, nil
}

// LoadMemberProfile returns the profile of wallet within guildID.
func (s *GuildService) LoadMemberProfile(ctx context.Context, wallet, guildID string) (*models.MemberProfile, error) {
	wallets, err := s.MemberList(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(wallets, wallet) {
		return nil, fmt.Errorf("%s in %s: %w", wallet, guildID, ErrNotGuildMember)
	}

	members, err := s.LoadGuildMembers(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.WalletAddress != wallet {
			continue
		}
		if m.Guild != guildID {
			return nil, fmt.Errorf("%s in %s: %w", wallet, guildID, ErrMemberDataMismatch)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("%s in %s: %w", wallet, guildID, ErrMemberNotFound)
}

// NewSession starts an empty guild selection backed by this service.
func (s *GuildService) NewSession() *GuildSession {
	return &GuildSession{service: s}
}

// GuildSession is one viewer's active guild and its loaded roster.
type GuildSession struct {
	service *GuildService

	mu      sync.RWMutex
	active  *models.GuildProfile
	members []models.MemberProfile
}

// Select makes guildID active and loads its members. The guild must have been loaded.
func (gs *GuildSession) Select(ctx context.Context, guildID string) error {
	guild, ok := gs.service.Guild(guildID)
	if !ok {
		return fmt.Errorf("%s: %w", guildID, ErrGuildNotFound)
	}
	members, err := gs.service.LoadGuildMembers(ctx, guildID)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.active = &guild
	gs.members = members
	return err
}

// Active returns the selected guild, or nil.
func (gs *GuildSession) Active() *models.GuildProfile {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	if gs.active == nil {
		return nil
	}
	g := *gs.active
	return &g
}

func (gs *GuildSession) Members() []models.MemberProfile {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return slices.Clone(gs.members)
}

func (gs *GuildSession) MemberCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.members)
}

func (gs *GuildSession) MembersByRole(role string) []models.MemberProfile {
	return MembersByRole(gs.Members(), role)
}

func (gs *GuildSession) ActiveMembers() []models.MemberProfile {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	out := make([]models.MemberProfile, 0, len(gs.members))
	for _, m := range gs.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

// RoleName maps a role id through the active guild's role table, falling back to the id.
func (gs *GuildSession) RoleName(roleID string) string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	if gs.active == nil {
		return roleID
	}
	return RoleName(*gs.active, roleID)
}

func MembersByRole(members []models.MemberProfile, role string) []models.MemberProfile {
	if role == "" {
		return members
	}
	out := make([]models.MemberProfile, 0, len(members))
	for _, m := range members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

func RoleName(guild models.GuildProfile, roleID string) string {
	if name, ok := guild.Roles[roleID]; ok && name != "" {
		return name
	}
	return roleID
}
