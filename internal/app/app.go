package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/screens/home"
	"github.com/abhisek/devquest/internal/screens/login"
	"github.com/abhisek/devquest/internal/screens/welcome"
	"github.com/abhisek/devquest/internal/store"
	"github.com/abhisek/devquest/internal/ui/layout"
)

// Deps are what the interactive app runs on.
type Deps struct {
	screens.Deps

	// Snapshots, when set, receives the profile after every change so it
	// can be shown while offline.
	Snapshots store.SnapshotRepo

	// SkipSplash starts directly on the home or sign-in screen.
	SkipSplash bool
}

// profileChangedMsg is sent by the profile listener; nil means signed out.
type profileChangedMsg struct {
	Profile *profile.UserProfile
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps     Deps
	router   *router.Router
	stats    layout.HeaderStats
	signedIn bool
	width    int
	height   int
}

// newAppModel creates an AppModel on the splash, home or sign-in screen.
func newAppModel(deps Deps) AppModel {
	m := AppModel{deps: deps}
	greeting := "Sign in to start practicing."
	if p, ok := deps.Profile.Profile(); ok {
		m.signedIn = true
		m.stats = headerStats(&p)
		greeting = fmt.Sprintf("Welcome back, %s · LV %d", p.DisplayName, p.Level)
	}

	var first screen.Screen
	if deps.SkipSplash {
		first = m.entryScreen()
	} else {
		first = welcome.New(m.entryScreen, greeting)
	}
	m.router = router.New(first)
	return m
}

// entryScreen is home for a signed-in learner and the sign-in form otherwise.
func (m AppModel) entryScreen() screen.Screen {
	if m.deps.Profile.IsAuthenticated() {
		return home.New(m.deps.Deps)
	}
	return m.loginScreen()
}

func (m AppModel) loginScreen() screen.Screen {
	deps := m.deps.Deps
	return login.New(deps.Profile, func() screen.Screen { return home.New(deps) })
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case profileChangedMsg:
		return m.handleProfileChanged(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// handleProfileChanged keeps the header current and sends a learner whose
// credential was dropped back to the sign-in form.
func (m AppModel) handleProfileChanged(msg profileChangedMsg) (tea.Model, tea.Cmd) {
	wasSignedIn := m.signedIn
	m.signedIn = msg.Profile != nil
	m.stats = headerStats(msg.Profile)

	if msg.Profile == nil {
		if wasSignedIn {
			m.deps.Log().Info("signed out, returning to sign-in")
			return m, m.router.Reset(m.loginScreen())
		}
		return m, nil
	}
	return m, m.saveSnapshot(*msg.Profile)
}

func (m AppModel) saveSnapshot(p profile.UserProfile) tea.Cmd {
	repo, logger := m.deps.Snapshots, m.deps.Log()
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		err := repo.Save(ctx, &store.Snapshot{
			Timestamp: time.Now(),
			Data: store.SnapshotData{
				Version:     store.SnapshotVersion,
				UserID:      p.ID,
				Email:       p.Email,
				DisplayName: p.DisplayName,
				XP:          p.XP,
				Level:       p.Level,
				Streak:      p.Streak,
			},
		})
		if err == nil {
			err = repo.Prune(ctx, store.SnapshotKeep)
		}
		if err != nil {
			logger.Warn("save profile snapshot", "error", err)
		}
		return nil
	}
}

func headerStats(p *profile.UserProfile) layout.HeaderStats {
	if p == nil {
		return layout.HeaderStats{}
	}
	return layout.HeaderStats{Name: p.DisplayName, Level: p.Level, XP: p.XP, Streak: p.Streak}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(newAppModel(deps))

	// Listeners fire on whatever goroutine changed the profile, often inside
	// a command; Send from a fresh goroutine so they never wait on the loop.
	unsubscribe := deps.Profile.Subscribe(func(up *profile.UserProfile) {
		go p.Send(profileChangedMsg{Profile: up})
	})
	defer unsubscribe()

	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
