package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/store"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
)

// SessionLimit caps how many past sessions are listed.
const SessionLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Answers  map[string][]store.AnswerRecord // sessionID → answers
	Totals   []store.TopicAccuracy
	Err      error
}

// HistoryScreen displays past practice sessions and their answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionRecord
	answers   map[string][]store.AnswerRecord
	totals    []store.TopicAccuracy
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{Err: errors.New("history is unavailable without a local database")}
		}
		ctx := context.Background()

		sessions, err := repo.QuerySessions(ctx, store.QueryOpts{Limit: SessionLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Answers and totals only decorate the list; a failure leaves them out.
		totals, _ := repo.TopicAccuracy(ctx)
		answers := make(map[string][]store.AnswerRecord, len(sessions))
		for _, sess := range sessions {
			recs, err := repo.QueryAnswers(ctx, store.QueryOpts{SessionID: sess.SessionID})
			if err != nil {
				break
			}
			answers[sess.SessionID] = recs
		}

		return historyLoadedMsg{Sessions: sessions, Answers: answers, Totals: totals}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.answers = msg.Answers
			s.totals = msg.Totals
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")
	if summary := s.totalsLine(); summary != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Render(summary)))
		b.WriteString("\n\n")
	}

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Format("Jan 02, 2006")
		mins := sess.DurationSecs / 60
		secs := sess.DurationSecs % 60
		durationStr := fmt.Sprintf("%d:%02d", mins, secs)

		var accuracy float64
		if sess.QuestionsAnswered > 0 {
			accuracy = float64(sess.CorrectAnswers) / float64(sess.QuestionsAnswered) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-16s %s  %d questions  %.0f%% accuracy  +%d XP",
			prefix, dateStr, sess.TopicID, durationStr, sess.QuestionsAnswered, accuracy, sess.XPEarned)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAnswers(sess.SessionID, width))
		}
	}

	return b.String()
}

// totalsLine sums every recorded answer, including sessions past the list limit.
func (s *HistoryScreen) totalsLine() string {
	var answered, correct, xp int
	for _, t := range s.totals {
		answered += t.Attempted
		correct += t.Correct
		xp += t.XPEarned
	}
	if answered == 0 {
		return ""
	}
	return fmt.Sprintf("%d answers across %d topics · %.0f%% correct · %d XP earned",
		answered, len(s.totals), float64(correct)/float64(answered)*100, xp)
}

func (s *HistoryScreen) renderAnswers(sessionID string, width int) string {
	recs := s.answers[sessionID]
	if len(recs) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("    No answers this session")) + "\n"
	}

	var b strings.Builder
	// Answers come back newest first; show them in the order they were given.
	for i := len(recs) - 1; i >= 0; i-- {
		a := recs[i]
		mark, color := "✗", theme.Error
		if a.Correct {
			mark, color = "✓", theme.Success
		}
		line := fmt.Sprintf("    %s %-8s %-12s score %3d  +%d XP", mark, a.Kind, a.Difficulty, a.Score, a.XPAwarded)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(color).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
