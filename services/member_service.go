// services/member_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"guildhall/models"
)

var ErrNotInGuild = errors.New("user is not a member of this guild")

func permissionTablePath(guildID string) string {
	return path.Join("guildpermission", strings.ReplaceAll(guildID, "-", "")+"_permissiontable.json")
}

func tokenMetaPath(guildID string, n int) string {
	return path.Join("guildtoken", fmt.Sprintf("%s_token%d.json", guildID, n))
}

// MemberView is everything the dashboard shows for one member of one guild.
type MemberView struct {
	Profile      models.MemberProfile       `json:"profile"`
	RoleName     string                     `json:"roleName"`
	Permissions  models.GuildPermission     `json:"permissions"`
	TokenBalance *models.MemberTokenBalance `json:"tokenBalance"`
}

// HasPermission looks a permission up by its JSON name.
func (v *MemberView) HasPermission(name string) bool {
	return v != nil && v.Permissions.Permissions.Has(name)
}

// MemberService resolves permissions and guild token balances for members.
type MemberService struct {
	fixtures *FixtureClient
	guilds   *GuildService
	wallets  *WalletService
	logger   *zap.Logger
	now      func() time.Time
}

func NewMemberService(fixtures *FixtureClient, guilds *GuildService, wallets *WalletService, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		fixtures: fixtures,
		guilds:   guilds,
		wallets:  wallets,
		logger:   logger.Named("members"),
		now:      time.Now,
	}
}

func (s *MemberService) WithClock(now func() time.Time) *MemberService {
	s.now = now
	return s
}

// LoadMember checks guild membership via the wallet balance, then loads the member's
// profile, permissions and token balance.
func (s *MemberService) LoadMember(ctx context.Context, wallet models.Wallet, guildID string) (*MemberView, error) {
	in, err := s.wallets.IsInGuild(ctx, wallet, guildID)
	if err != nil {
		return nil, err
	}
	if !in {
		return nil, fmt.Errorf("%s in %s: %w", wallet.Address, guildID, ErrNotInGuild)
	}

	profile, err := s.guilds.LoadMemberProfile(ctx, wallet.Address, guildID)
	if err != nil {
		return nil, err
	}

	roleName := profile.Role
	if g, ok := s.guilds.Guild(guildID); ok {
		roleName = RoleName(g, profile.Role)
	}

	return &MemberView{
		Profile:      *profile,
		RoleName:     roleName,
		Permissions:  s.LoadPermissions(ctx, profile.Role, guildID),
		TokenBalance: s.LoadTokenBalance(ctx, wallet.Address, guildID),
	}, nil
}

// LoadPermissions returns the role's row from the guild permission table.
// Unknown roles and unreadable tables get view-only defaults.
func (s *MemberService) LoadPermissions(ctx context.Context, role, guildID string) models.GuildPermission {
	var table []models.GuildPermission
	if err := s.fixtures.GetCachedJSON(ctx, permissionTablePath(guildID), &table); err != nil {
		s.logger.Warn("⚠️ [MEMBERS] failed to load member permissions", zap.String("guild", guildID), zap.Error(err))
		return models.DefaultGuildPermission(role)
	}
	for _, p := range table {
		if p.Role == role {
			return p
		}
	}
	return models.DefaultGuildPermission(role)
}

// LoadTokenBalance reads the member's guild token holdings.
// It returns nil when the wallet has no balance file and zeroed defaults when loading fails.
func (s *MemberService) LoadTokenBalance(ctx context.Context, wallet, guildID string) *models.MemberTokenBalance {
	var b models.WalletBalance
	err := s.fixtures.GetJSON(ctx, walletBalancePath(wallet), &b)
	if errors.Is(err, ErrFixtureNotFound) {
		s.logger.Warn("⚠️ [MEMBERS] balance file not found", zap.String("wallet", wallet))
		return nil
	}
	if err != nil {
		s.logger.Warn("⚠️ [MEMBERS] failed to load member token balance", zap.String("wallet", wallet), zap.Error(err))
		return s.defaultTokenBalance()
	}

	t1 := s.tokenMeta(ctx, guildID, 1)
	t2 := s.tokenMeta(ctx, guildID, 2)
	prefix := models.GuildPrefix(guildID)

	lastUpdated := b.LastUpdated
	if lastUpdated == "" {
		lastUpdated = s.now().UTC().Format(time.RFC3339)
	}
	return &models.MemberTokenBalance{
		Token1:       TokenBalance(&b, prefix+"-token1"),
		Token2:       TokenBalance(&b, prefix+"-token2"),
		Token1Name:   t1.Name,
		Token2Name:   t2.Name,
		Token1Symbol: t1.Symbol,
		Token2Symbol: t2.Symbol,
		LastUpdated:  lastUpdated,
	}
}

// tokenMeta falls back to Token-N / TN for missing files or fields.
func (s *MemberService) tokenMeta(ctx context.Context, guildID string, n int) models.TokenMeta {
	meta := models.TokenMeta{}
	if err := s.fixtures.GetCachedJSON(ctx, tokenMetaPath(guildID, n), &meta); err != nil {
		s.logger.Debug("[MEMBERS] token metadata unavailable", zap.String("guild", guildID), zap.Int("token", n), zap.Error(err))
	}
	if meta.Name == "" {
		meta.Name = fmt.Sprintf("Token-%d", n)
	}
	if meta.Symbol == "" {
		meta.Symbol = fmt.Sprintf("T%d", n)
	}
	return meta
}

func (s *MemberService) defaultTokenBalance() *models.MemberTokenBalance {
	return &models.MemberTokenBalance{
		Token1Name:   "Token-1",
		Token2Name:   "Token-2",
		Token1Symbol: "T1",
		Token2Symbol: "T2",
		LastUpdated:  s.now().UTC().Format(time.RFC3339),
	}
}
