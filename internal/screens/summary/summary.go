package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/session"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
)

// SummaryScreen displays what a finished practice session added up to.
type SummaryScreen struct {
	topic    string
	tally    session.Tally
	duration time.Duration
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for a session on topic that ended at endedAt.
func New(topic string, tally session.Tally, endedAt time.Time) *SummaryScreen {
	d := endedAt.Sub(tally.StartedAt)
	if tally.StartedAt.IsZero() || d < 0 {
		d = 0
	}
	return &SummaryScreen{topic: topic, tally: tally, duration: d}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	t := s.tally
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	heading := "Session complete!"
	if t.Answered == 0 {
		heading = "Session ended"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), heading))
	b.WriteString("\n")
	if s.topic != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Secondary), s.topic))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mins := int(s.duration.Minutes())
	secs := int(s.duration.Seconds()) % 60
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	if t.Answered == 0 {
		b.WriteString(center(theme.Hint, "No questions answered this time."))
		return b.String()
	}

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		t.Answered, t.Correct, t.Accuracy()*100)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		fmt.Sprintf("+%d XP", t.XPEarned)))
	b.WriteString("\n")

	var extras []string
	if t.HintsUsed > 0 {
		extras = append(extras, fmt.Sprintf("%d hint(s) used", t.HintsUsed))
	}
	if t.LevelUps > 0 {
		extras = append(extras, fmt.Sprintf("%d level up(s)", t.LevelUps))
	}
	if len(extras) > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), strings.Join(extras, "   ")))
		b.WriteString("\n")
	}

	return b.String()
}
