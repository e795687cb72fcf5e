package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guildhall/config"
	"guildhall/models"
	"guildhall/services"
)

// QuestsOptions are the flags of the quests command.
type QuestsOptions struct {
	Tab     string
	Status  string
	Dir     string
	EnvFile string
}

// QuestBoard is what the quests command prints.
type QuestBoard struct {
	Tab    services.QuestTab    `json:"tab"`
	Status string               `json:"status"`
	Stats  services.QuestStats  `json:"stats"`
	Items  []services.QuestItem `json:"items"`
	Errors string               `json:"errors,omitempty"`
}

func NewQuestsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuestsOptions{}

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Load the quest fixtures once and print a board tab",
		Long: `Load every quest listed in the fixture manifest and print the stats and items
of one board tab, optionally narrowed to a single status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuests(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Tab, "tab", string(services.TabIngame), "board tab (ingame|guild)")
	cmd.Flags().StringVar(&opts.Status, "status", services.StatusFilterAll, "status filter (all|new|pending|assigned|delivered|rewarded|completed)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "read fixtures from this SLP directory instead of FIXTURE_SOURCE")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	return cmd
}

func runQuests(cmd *cobra.Command, rootOpts *RootOptions, opts *QuestsOptions) error {
	tab := services.QuestTab(opts.Tab)
	if !tab.Valid() {
		return fmt.Errorf("invalid tab %q: must be ingame or guild", opts.Tab)
	}
	if opts.Status != services.StatusFilterAll && !models.QuestStatus(opts.Status).Valid() {
		return fmt.Errorf("invalid status %q", opts.Status)
	}

	logger := zap.NewNop()
	if rootOpts.Verbose {
		l, err := newLogger(true)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = l.Sync() }()
		logger = l
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	if opts.Dir != "" {
		cfg.FixtureSource = "dir"
		cfg.FixtureDir = opts.Dir
	}

	ctx := cmd.Context()
	manifest, err := services.LoadManifest(cfg.FixtureManifest)
	if err != nil {
		return err
	}
	fixtures, err := newFixtureClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store := services.NewQuestStore(fixtures, manifest, logger)
	if _, err := store.LoadQuests(ctx); err != nil {
		return err
	}

	view := services.NewBoardState()
	view.SetTab(tab)
	view.SetStatusFilter(opts.Status)

	board := QuestBoard{
		Tab:    view.Tab,
		Status: view.StatusFilter,
		Stats:  store.Stats(view.Tab),
		Items:  services.QuestItems(view.View(store.All())),
		Errors: store.Err(),
	}

	out := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}
	return renderBoard(out, board)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))

	// Terminal stand-ins for the dashboard's status colors.
	statusStyles = map[models.QuestStatus]lipgloss.Style{
		models.QuestStatusNew:       lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")),
		models.QuestStatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9c27b0")),
		models.QuestStatusAssigned:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00bcd4")),
		models.QuestStatusDelivered: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		models.QuestStatusRewarded:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		models.QuestStatusCompleted: mutedStyle,
	}
)

func renderBoard(w io.Writer, board QuestBoard) error {
	title := string(board.Tab)
	if info, ok := services.TabInfoFor(board.Tab); ok {
		title = info.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(title), mutedStyle.Render("filter: "+board.Status))

	s := board.Stats
	fmt.Fprintf(&b, "total %d · new %d · pending %d · assigned %d · delivered %d · rewarded %d · completed %d\n\n",
		s.Total, s.New, s.Pending, s.Assigned, s.Delivered, s.Rewarded, s.Completed)

	if len(board.Items) == 0 {
		b.WriteString(mutedStyle.Render("no quests") + "\n")
	}
	for _, item := range board.Items {
		status := item.Quest.Status
		style, ok := statusStyles[status]
		if !ok {
			style = mutedStyle
		}
		label := style.Width(11).Render(services.StatusLabel(string(status)))
		fmt.Fprintf(&b, "%s %-14s %s  %s\n", label, item.ID, item.Title, mutedStyle.Render(item.Value))
	}

	if board.Errors != "" {
		fmt.Fprintf(&b, "\n%s\n", errorStyle.Render(board.Errors))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
