package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guildhall/models"
)

func newGuildService(t *testing.T) *GuildService {
	t.Helper()
	fixtures, _ := newHTTPFixtureClient(t)
	svc := NewGuildService(fixtures, DefaultManifest(), zap.NewNop())
	svc.LoadAvailableGuilds(context.Background())
	return svc
}

func TestGuildService_LoadAvailableGuilds(t *testing.T) {
	svc := newGuildService(t)

	guilds := svc.Guilds()
	require.Len(t, guilds, 2)
	assert.Equal(t, "guild-1", guilds[0].ID)
	assert.Equal(t, "Iron Vanguard", guilds[0].Name)
	assert.Equal(t, "1000", guilds[0].Daos.TotalVote)
	assert.Equal(t, "prospect", guilds[1].Settings.AutoAssignRole)

	_, ok := svc.Guild("guild-3")
	assert.False(t, ok)
}

func TestGuildService_MissingProfileIsSkipped(t *testing.T) {
	fixtures, _ := newHTTPFixtureClient(t)
	m := DefaultManifest()
	m.GuildProfiles = append(m.GuildProfiles, "guild-9_profile.json")
	svc := NewGuildService(fixtures, m, nil)

	assert.Len(t, svc.LoadAvailableGuilds(context.Background()), 2)
}

func TestGuildService_LoadGuildMembers(t *testing.T) {
	svc := newGuildService(t)
	ctx := context.Background()

	g1, err := svc.LoadGuildMembers(ctx, "guild-1")
	require.NoError(t, err)
	require.Len(t, g1, 5)
	assert.Equal(t, "Alice", g1[0].Username)
	assert.Equal(t, models.RoleProspect, g1[0].Role)
	assert.Equal(t, models.RoleFounder, g1[4].Role)

	g2, err := svc.LoadGuildMembers(ctx, "guild-2")
	require.NoError(t, err)
	require.Len(t, g2, 4, "eve has a profile but is not on the member list")
	for _, m := range g2 {
		assert.NotEqual(t, eveWallet.Address, m.WalletAddress)
	}

	_, err = svc.LoadGuildMembers(ctx, "guild-9")
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestGuildService_LoadMemberProfile(t *testing.T) {
	svc := newGuildService(t)
	ctx := context.Background()

	m, err := svc.LoadMemberProfile(ctx, aliceWallet.Address, "guild-2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)
	assert.Equal(t, "guild-2", m.Guild)

	_, err = svc.LoadMemberProfile(ctx, eveWallet.Address, "guild-2")
	assert.ErrorIs(t, err, ErrNotGuildMember)

	_, err = svc.LoadMemberProfile(ctx, "unknown", "guild-1")
	assert.ErrorIs(t, err, ErrNotGuildMember)
}

func TestGuildService_MemberProfileMismatch(t *testing.T) {
	src := newMemSource(map[string]string{
		"guildmemberlist/guild-1_memberlist.json": `["w1"]`,
		"memberprofiles/g1_alice_member.json":     `{"walletAddress":"w1","guild":"guild-2","role":"member"}`,
	})
	svc := NewGuildService(NewFixtureClient(src, nil, nil), &Manifest{
		Quests:      []string{"x"},
		MemberNames: []string{"alice", "bob"},
		MemberRoles: []string{"prospect", "member"},
	}, nil)

	_, err := svc.LoadMemberProfile(context.Background(), "w1", "guild-1")
	assert.ErrorIs(t, err, ErrMemberDataMismatch)

	src.set("guildmemberlist/guild-2_memberlist.json", `["w2"]`)
	_, err = svc.LoadMemberProfile(context.Background(), "w2", "guild-2")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestGuildSession(t *testing.T) {
	svc := newGuildService(t)
	session := svc.NewSession()
	ctx := context.Background()

	assert.Nil(t, session.Active())
	assert.Equal(t, "council", session.RoleName("council"))
	assert.ErrorIs(t, session.Select(ctx, "guild-9"), ErrGuildNotFound)

	require.NoError(t, session.Select(ctx, "guild-2"))
	require.NotNil(t, session.Active())
	assert.Equal(t, "Star Weavers", session.Active().Name)
	assert.Equal(t, 4, session.MemberCount())
	assert.Len(t, session.ActiveMembers(), 3, "diana is inactive")

	officers := session.MembersByRole(models.RoleOfficer)
	require.Len(t, officers, 1)
	assert.Equal(t, "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1", officers[0].WalletAddress)
	assert.Len(t, session.MembersByRole(models.RoleFounder), 1)

	assert.Equal(t, "Officer", session.RoleName("officer"))
	assert.Equal(t, "council", session.RoleName("council"), "guild-2 has no council display name")

	require.NoError(t, session.Select(ctx, "guild-1"))
	assert.Equal(t, "guild-1", session.Active().ID)
	assert.Equal(t, 5, session.MemberCount(), "selecting replaces the roster")
}
