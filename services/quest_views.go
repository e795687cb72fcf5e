// services/quest_views.go
package services

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"guildhall/models"
)

// QuestTab is a board tab; each tab lists one quest type.
type QuestTab string

const (
	TabIngame QuestTab = "ingame"
	TabGuild  QuestTab = "guild"
)

// StatusFilterAll disables status filtering.
const StatusFilterAll = "all"

func (t QuestTab) Valid() bool { return t == TabIngame || t == TabGuild }

func (t QuestTab) QuestType() models.QuestType {
	if t == TabGuild {
		return models.QuestTypeGuild
	}
	return models.QuestTypeIngame
}

type TabInfo struct {
	ID          QuestTab `json:"id"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Route       string   `json:"route"`
}

var questTabs = []TabInfo{
	{
		ID:          TabIngame,
		Title:       "In-Game Quests",
		Icon:        questIconIngame,
		Description: "Complete in-game challenges and earn rewards",
		Features:    []string{"Combat challenges", "Exploration missions", "PvP competitions", "Skill-based tasks"},
		Route:       "/quest/game",
	},
	{
		ID:          TabGuild,
		Title:       "Guild Quests",
		Icon:        questIconGuild,
		Description: "Participate in guild activities and community tasks",
		Features:    []string{"Treasury management", "Recruitment tasks", "Event organization", "Community building"},
		Route:       "/quest/guild",
	},
}

// QuestTabs returns the board tabs in display order.
func QuestTabs() []TabInfo {
	out := make([]TabInfo, len(questTabs))
	copy(out, questTabs)
	return out
}

func TabInfoFor(tab QuestTab) (TabInfo, bool) {
	for _, t := range questTabs {
		if t.ID == tab {
			return t, true
		}
	}
	return TabInfo{}, false
}

const (
	questIconIngame = "game-icons:target-dummy"
	questIconGuild  = "game-icons:heart-tower"
)

type statusDisplay struct {
	icon, label, color string
}

var statusDisplays = map[models.QuestStatus]statusDisplay{
	models.QuestStatusNew:       {"game-icons:plus", "New", "var(--primary-color-0)"},
	models.QuestStatusPending:   {"game-icons:clock", "Pending", "var(--secondary-color-1)"},
	models.QuestStatusAssigned:  {"game-icons:user-check", "Assigned", "var(--accent-color-0)"},
	models.QuestStatusDelivered: {"game-icons:package", "Delivered", "var(--warning-color-0)"},
	models.QuestStatusRewarded:  {"game-icons:trophy", "Rewarded", "var(--success-color-0)"},
	models.QuestStatusCompleted: {"game-icons:check-mark", "Completed", "var(--text-color-2)"},
}

func lookupStatus(status string) (statusDisplay, bool) {
	d, ok := statusDisplays[models.QuestStatus(strings.ToLower(status))]
	return d, ok
}

func StatusIcon(status string) string {
	if d, ok := lookupStatus(status); ok {
		return d.icon
	}
	return "game-icons:question-mark"
}

// StatusLabel falls back to the raw status.
func StatusLabel(status string) string {
	if d, ok := lookupStatus(status); ok {
		return d.label
	}
	return status
}

func StatusColor(status string) string {
	if d, ok := lookupStatus(status); ok {
		return d.color
	}
	return "var(--text-color-1)"
}

func QuestIcon(q *models.Quest) string {
	if q.Type == models.QuestTypeGuild {
		return questIconGuild
	}
	return questIconIngame
}

func FilterByTab(quests []*models.Quest, tab QuestTab) []*models.Quest {
	want := tab.QuestType()
	out := make([]*models.Quest, 0, len(quests))
	for _, q := range quests {
		if q.Type == want {
			out = append(out, q)
		}
	}
	return out
}

// FilterByStatus keeps quests in status; "all" or an empty filter keeps everything.
func FilterByStatus(quests []*models.Quest, status string) []*models.Quest {
	if status == "" || status == StatusFilterAll {
		return quests
	}
	out := make([]*models.Quest, 0, len(quests))
	for _, q := range quests {
		if string(q.Status) == status {
			out = append(out, q)
		}
	}
	return out
}

func FilterByGuild(quests []*models.Quest, guildID string) []*models.Quest {
	out := make([]*models.Quest, 0)
	for _, q := range quests {
		if q.GuildID == guildID {
			out = append(out, q)
		}
	}
	return out
}

type QuestStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Pending   int `json:"pending"`
	Assigned  int `json:"assigned"`
	Delivered int `json:"delivered"`
	Rewarded  int `json:"rewarded"`
	Completed int `json:"completed"`
}

func ComputeStats(quests []*models.Quest) QuestStats {
	stats := QuestStats{Total: len(quests)}
	for _, q := range quests {
		switch q.Status {
		case models.QuestStatusNew:
			stats.New++
		case models.QuestStatusPending:
			stats.Pending++
		case models.QuestStatusAssigned:
			stats.Assigned++
		case models.QuestStatusDelivered:
			stats.Delivered++
		case models.QuestStatusRewarded:
			stats.Rewarded++
		case models.QuestStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

// QuestItem is the list-row projection of a quest.
type QuestItem struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Icon        string        `json:"icon"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle"`
	Value       string        `json:"value"`
	Description string        `json:"description"`
	StatusIcon  string        `json:"statusIcon"`
	StatusColor string        `json:"statusColor"`
	Quest       *models.Quest `json:"questData"`
}

func QuestItems(quests []*models.Quest) []QuestItem {
	items := make([]QuestItem, len(quests))
	for i, q := range quests {
		items[i] = QuestItem{
			ID:          q.QuestID,
			Slug:        slug.Make(q.Title),
			Icon:        QuestIcon(q),
			Title:       q.Title,
			Subtitle:    strings.ToUpper(string(q.Status)),
			Value:       strconv.FormatFloat(q.AmountToken1, 'f', -1, 64) + " tokens",
			Description: q.Description,
			StatusIcon:  StatusIcon(string(q.Status)),
			StatusColor: StatusColor(string(q.Status)),
			Quest:       q,
		}
	}
	return items
}

// BoardState is one viewer's tab and status filter.
type BoardState struct {
	Tab          QuestTab `json:"tab"`
	StatusFilter string   `json:"statusFilter"`
}

func NewBoardState() *BoardState {
	return &BoardState{Tab: TabIngame, StatusFilter: StatusFilterAll}
}

// SetTab switches tab and resets the status filter to "new".
func (b *BoardState) SetTab(tab QuestTab) {
	b.Tab = tab
	b.StatusFilter = string(models.QuestStatusNew)
}

func (b *BoardState) SetStatusFilter(status string) {
	b.StatusFilter = status
}

// View narrows quests to the board's tab and status filter.
func (b *BoardState) View(quests []*models.Quest) []*models.Quest {
	return FilterByStatus(FilterByTab(quests, b.Tab), b.StatusFilter)
}
