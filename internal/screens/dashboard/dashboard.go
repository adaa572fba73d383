package dashboard

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
)

// LeaderboardSize is how many ranked learners the dashboard shows.
const LeaderboardSize = 10

type tab int

const (
	tabProgress tab = iota
	tabStats
	tabLeaderboard
)

var tabNames = []string{"Progress", "Stats", "Leaderboard"}

// dashboardLoadedMsg carries each section and its own failure, so one
// failing endpoint does not blank the others.
type dashboardLoadedMsg struct {
	Overview    api.ProgressOverview
	OverviewErr error
	Stats       api.UserStats
	StatsErr    error
	Leaders     []api.LeaderboardEntry
	LeadersErr  error

	// Err is set when a section was rejected as unauthorized.
	Err error
}

// DashboardScreen shows topic mastery, lifetime stats and the leaderboard.
type DashboardScreen struct {
	deps   screens.Deps
	active tab
	data   *dashboardLoadedMsg
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a DashboardScreen.
func New(deps screens.Deps) *DashboardScreen {
	return &DashboardScreen{deps: deps}
}

func (s *DashboardScreen) Init() tea.Cmd {
	svc, userID := s.deps.Service, s.deps.Profile.UserID()
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()

		// Sections fail on their own; only a rejected credential cancels
		// the rest, since the app is signing out anyway.
		var msg dashboardLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			msg.Overview, msg.OverviewErr = svc.UserProgress(gctx, userID)
			return signedOut(msg.OverviewErr)
		})
		g.Go(func() error {
			msg.Stats, msg.StatsErr = svc.UserStats(gctx, userID)
			return signedOut(msg.StatsErr)
		})
		g.Go(func() error {
			msg.Leaders, msg.LeadersErr = svc.Leaderboard(gctx, LeaderboardSize)
			return signedOut(msg.LeadersErr)
		})
		msg.Err = g.Wait()
		return msg
	}
}

func signedOut(err error) error {
	if api.IsUnauthorized(err) {
		return err
	}
	return nil
}

func (s *DashboardScreen) Title() string {
	return "Progress"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch view"},
		{Key: "1-3", Description: "Jump"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		s.data = &msg
		if msg.OverviewErr == nil && s.deps.Progress != nil {
			for _, p := range msg.Overview.Topics {
				s.deps.Progress.Patch(p.TopicID, p)
			}
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right", "l":
			s.active = (s.active + 1) % tab(len(tabNames))
		case "shift+tab", "left", "h":
			s.active = (s.active + tab(len(tabNames)) - 1) % tab(len(tabNames))
		case "1":
			s.active = tabProgress
		case "2":
			s.active = tabStats
		case "3":
			s.active = tabLeaderboard
		case "r":
			s.data = nil
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var tabs []string
	for i, name := range tabNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if tab(i) == s.active {
			tabs = append(tabs, theme.LevelBadge.Render(label))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}

	var body string
	switch {
	case s.data == nil:
		body = theme.Hint.Render("Loading...")
	case s.active == tabProgress:
		body = s.renderProgress(cw - 6)
	case s.active == tabStats:
		body = s.renderStats()
	default:
		body = s.renderLeaderboard()
	}

	content := strings.Join(tabs, " ") + "\n\n" + components.Card(body, cw)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func (s *DashboardScreen) renderProgress(inner int) string {
	if s.data.OverviewErr != nil {
		return theme.ErrorText.Render(screens.Describe(s.data.OverviewErr))
	}
	ov := s.data.Overview
	if len(ov.Topics) == 0 {
		return theme.Hint.Render("No practice yet. Pick a topic from the home screen to get started.")
	}

	var b strings.Builder
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d questions answered · %.0f%% overall accuracy",
		ov.TotalQuestions, ov.OverallAccuracy)))
	b.WriteString("\n\n")

	topics := append(ov.Topics[:0:0], ov.Topics...)
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Mastery > topics[j].Mastery })
	for _, p := range topics {
		b.WriteString(components.NewMasteryBar(p.TopicID, p.Mastery, inner).View())
		b.WriteString("\n")
		b.WriteString("  " + theme.DifficultyTag(string(p.Difficulty)))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			fmt.Sprintf(" · %d/%d correct · +%d XP", p.Correct, p.Attempted, p.XPEarned)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *DashboardScreen) renderStats() string {
	if s.data.StatsErr != nil {
		return theme.ErrorText.Render(screens.Describe(s.data.StatsErr))
	}
	st := s.data.Stats

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(18).Render(label))
		b.WriteString(theme.Body.Render(value))
		b.WriteString("\n")
	}
	row("Attempts", fmt.Sprintf("%d", st.TotalAttempts))
	row("Correct", fmt.Sprintf("%d", st.CorrectAttempts))
	row("Accuracy", fmt.Sprintf("%.0f%%", st.Accuracy))
	row("XP earned", fmt.Sprintf("%d", st.TotalXPEarned))

	if len(st.MistakeBreakdown) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Mistakes"))
		b.WriteString("\n")
		kinds := make([]string, 0, len(st.MistakeBreakdown))
		for k := range st.MistakeBreakdown {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			row("  "+k, fmt.Sprintf("%d", st.MistakeBreakdown[k]))
		}
	}
	return b.String()
}

func (s *DashboardScreen) renderLeaderboard() string {
	if s.data.LeadersErr != nil {
		return theme.ErrorText.Render(screens.Describe(s.data.LeadersErr))
	}
	if len(s.data.Leaders) == 0 {
		return theme.Hint.Render("Nobody on the board yet.")
	}

	me := s.deps.Profile.UserID()
	var b strings.Builder
	for _, e := range s.data.Leaders {
		line := fmt.Sprintf("%3d. %-20s Lv %-3d %6d XP  🔥 %d", e.Rank, e.DisplayName, e.Level, e.XP, e.Streak)
		style := theme.Unselected
		if e.UserID == me {
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
