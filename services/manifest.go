// services/manifest.go
package services

import (
	_ "embed"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"guildhall/models"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Manifest enumerates the fixture files the dashboard reads. The lists are fixed:
// nothing is discovered by listing directories.
type Manifest struct {
	QuestDir      string   `yaml:"quest_dir"`
	Quests        []string `yaml:"quests"`
	GuildProfiles []string `yaml:"guild_profiles"`
	MemberNames   []string `yaml:"member_names"`
	MemberRoles   []string `yaml:"member_roles"`
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("embedded manifest is invalid: %v", err))
	}
	return m
}

// LoadManifest reads a manifest file, or the embedded default when path is empty.
func LoadManifest(file string) (*Manifest, error) {
	if file == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Quests) == 0 {
		return nil, fmt.Errorf("parse manifest: no quest files listed")
	}
	if m.QuestDir == "" {
		m.QuestDir = "quests"
	}
	if len(m.MemberRoles) == 0 {
		m.MemberRoles = []string{
			models.RoleProspect, models.RoleMember, models.RoleOfficer, models.RoleCouncil, models.RoleFounder,
		}
	}
	return &m, nil
}

// QuestPaths returns the quest fixture paths in manifest order.
func (m *Manifest) QuestPaths() []string {
	paths := make([]string, len(m.Quests))
	for i, f := range m.Quests {
		paths[i] = path.Join(m.QuestDir, f)
	}
	return paths
}

func guildProfilePath(file string) string { return path.Join("guildprofiles", file) }

func memberListPath(guildID string) string {
	return path.Join("guildmemberlist", guildID+"_memberlist.json")
}

func memberProfilePath(guildID, name, role string) string {
	return path.Join("memberprofiles", fmt.Sprintf("%s_%s_%s.json", models.GuildPrefix(guildID), name, role))
}
