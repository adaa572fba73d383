package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	gopherIn     = 500 * time.Millisecond
	bannerIn     = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond

	// proverbTicks is how long each proverb stays up.
	proverbTicks = 40
)

const gopherArt = `  ╭───────────╮
  │  ╭─────╮  │
  │ (│ ◉ ◉ │) │
  │  │  ▾  │  │
  │  ├─────┤  │
  │  │ go! │  │
  │  ╰─────╯  │
  ╰───────────╯`

var blinkFrames = []string{"★", "✦"}

// proverbs rotate under the banner while the splash waits for a key.
var proverbs = []string{
	"Don't communicate by sharing memory, share memory by communicating.",
	"Errors are values.",
	"The bigger the interface, the weaker the abstraction.",
	"Make the zero value useful.",
	"Clear is better than clever.",
	"A little copying is better than a little dependency.",
}

type tickMsg time.Time

// WelcomeScreen is the splash shown at startup. Any key hands over to the
// screen built by next.
type WelcomeScreen struct {
	next     func() screen.Screen
	greeting string
	elapsed  time.Duration
	ticks    int
	done     bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the splash. greeting is the line shown under the banner, e.g.
// who is signed in. next is called at most once.
func New(next func() screen.Screen, greeting string) *WelcomeScreen {
	return &WelcomeScreen{next: next, greeting: greeting}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.done {
			return w, nil
		}
		w.elapsed = min(w.elapsed+tickInterval, totalDur)
		w.ticks++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

func (w *WelcomeScreen) leave() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// proverb returns the proverb currently on display.
func (w *WelcomeScreen) proverb() string {
	return proverbs[(w.ticks/proverbTicks)%len(proverbs)]
}

func (w *WelcomeScreen) View(width, height int) string {
	gopher := lipgloss.NewStyle().Foreground(theme.Primary).Render(gopherArt)

	if w.elapsed >= gopherIn {
		star := blinkFrames[w.ticks%len(blinkFrames)]
		a := lipgloss.NewStyle().Foreground(theme.Accent).Render(star)
		b := lipgloss.NewStyle().Foreground(theme.Secondary).Render(star)

		lines := strings.Split(gopher, "\n")
		for i, l := range lines {
			switch i {
			case 0, 7:
				lines[i] = a + "  " + l + "  " + b
			case 3:
				lines[i] = b + "  " + l + "  " + a
			default:
				lines[i] = "   " + l + "   "
			}
		}
		gopher = strings.Join(lines, "\n")
	}

	sections := []string{gopher}

	if w.elapsed >= bannerIn {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
				Render("Level up your Go, one question at a time."),
			theme.Hint.Render(w.proverb()),
		)
		if w.greeting != "" {
			sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Secondary).Render(w.greeting))
		}
		sections = append(sections, "", theme.Hint.Render("press any key to continue"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
