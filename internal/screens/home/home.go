package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/screens/dashboard"
	"github.com/abhisek/devquest/internal/screens/history"
	"github.com/abhisek/devquest/internal/screens/topics"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
	"github.com/abhisek/devquest/internal/xp"
)

// catalogLoadedMsg carries the course list and the learner's progress.
type catalogLoadedMsg struct {
	Courses  []api.Course
	Overview *api.ProgressOverview
	Err      error
}

// signedOutMsg is sent once the credential has been cleared.
type signedOutMsg struct {
	Err error
}

// HomeScreen is the main menu: courses to practice plus account actions.
type HomeScreen struct {
	deps    screens.Deps
	menu    components.Menu
	courses []api.Course
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	svc, userID := h.deps.Service, h.deps.Profile.UserID()
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()

		courses, err := svc.Courses(ctx)
		if err != nil {
			return catalogLoadedMsg{Err: err}
		}
		msg := catalogLoadedMsg{Courses: courses}
		if userID != "" {
			if ov, err := svc.UserProgress(ctx, userID); err == nil {
				msg.Overview = &ov
			}
		}
		return msg
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if h.errMsg != "" {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Reload"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = screens.Describe(msg.Err)
			h.deps.Log().Warn("load catalog", "error", msg.Err)
			return h, nil
		}
		h.errMsg = ""
		h.courses = msg.Courses
		if msg.Overview != nil && h.deps.Progress != nil {
			for _, p := range msg.Overview.Topics {
				h.deps.Progress.Patch(p.TopicID, p)
			}
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) {
			h.menu.Selected = selected
		}
		return h, nil

	case signedOutMsg:
		if msg.Err != nil {
			h.errMsg = screens.Describe(msg.Err)
		}
		return h, nil

	case tea.KeyMsg:
		if msg.String() == "r" && h.errMsg != "" {
			h.errMsg = ""
			h.loaded = false
			return h, h.Init()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	deps := h.deps
	items := make([]components.MenuItem, 0, len(h.courses)+4)
	for _, c := range h.courses {
		course := c
		detail := fmt.Sprintf("%d topics", course.TotalTopics)
		if course.EstimatedHours > 0 {
			detail += fmt.Sprintf(" · ~%dh", course.EstimatedHours)
		}
		items = append(items, components.MenuItem{
			Label:  course.Name,
			Detail: detail,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: topics.New(deps, course)}
				}
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "Progress", Detail: "mastery, stats, leaderboard", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: dashboard.New(deps)} }
		}},
		components.MenuItem{Label: "History", Detail: "past sessions", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(deps.Events)} }
		}},
		components.MenuItem{Label: "Sign out", Action: func() tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := screens.RequestContext()
				defer cancel()
				return signedOutMsg{Err: deps.Profile.Clear(ctx)}
			}
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactWidth(width) || height < 22
	cw := components.ContentWidth(width)

	p, _ := h.deps.Profile.Profile()

	var sections []string
	greeting := "Welcome back"
	if p.DisplayName != "" {
		greeting = fmt.Sprintf("Welcome back, %s", p.DisplayName)
	}
	sections = append(sections, theme.Title.Width(cw).Render(greeting))

	if !compact {
		sections = append(sections, lipgloss.PlaceHorizontal(cw, lipgloss.Center, RenderMascot(mascotFor(p.Streak))))
	}

	sections = append(sections, renderStats(p.XP, p.Level, p.Streak, cw))

	var menu strings.Builder
	switch {
	case h.errMsg != "":
		menu.WriteString(theme.ErrorText.Render(h.errMsg))
		menu.WriteString("\n\n")
	case !h.loaded:
		menu.WriteString(theme.Hint.Render("Loading courses..."))
		menu.WriteString("\n\n")
	case len(h.courses) == 0:
		menu.WriteString(theme.Hint.Render("No courses available yet."))
		menu.WriteString("\n\n")
	}
	menu.WriteString(h.menu.View())
	sections = append(sections, components.Card(menu.String(), cw))

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderStats(total, level, streak, cw int) string {
	if level < 1 {
		level = xp.LevelFor(total)
	}
	badge := theme.LevelBadge.Render(fmt.Sprintf("LV %d", level))
	flame := lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🔥 %d day streak", streak))
	bar := components.NewXPBar(total, xp.ThresholdFor(level), xp.ProgressToNext(total, level), cw-4).View()
	return badge + "  " + flame + "\n" + bar
}
