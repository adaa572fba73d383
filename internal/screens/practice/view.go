package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/session"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch s.snap.Phase {
	case session.PhaseIdle, session.PhaseLoading:
		body = theme.Hint.Render("Picking your next question...")
	case session.PhaseLoadFailed:
		body = s.renderLoadFailed(cw)
	default:
		body = s.renderQuestion(cw)
	}

	content := s.renderInfoLine(cw) + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)) +
		"\n\n" + body
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func (s *PracticeScreen) renderInfoLine(cw int) string {
	t := s.ctrl.Tally()

	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(s.topic.Name)
	if q := s.snap.Question; q != nil {
		left += "  " + theme.DifficultyTag(string(q.Difficulty))
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("Q %d  %s %d  %s +%d XP",
		t.Answered+1,
		lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
		t.Correct,
		lipgloss.NewStyle().Foreground(theme.Accent).Render("★"),
		t.XPEarned,
	))

	pad := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *PracticeScreen) renderLoadFailed(cw int) string {
	msg := "Couldn't load a question."
	if s.snap.LoadErr != nil {
		msg = screens.Describe(s.snap.LoadErr)
	}
	return components.AccentCard(
		theme.ErrorText.Render(msg)+"\n\n"+theme.Hint.Render("Press R to try again or Esc to end the session."),
		cw, false)
}

func (s *PracticeScreen) renderQuestion(cw int) string {
	q := s.snap.Question
	if q == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Width(cw).Render(q.Text))
	b.WriteString("\n")
	if q.XPReward > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("worth up to %d XP", q.XPReward)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.CodeSnippet != "" {
		b.WriteString(theme.Code.Width(cw).Render(q.CodeSnippet))
		b.WriteString("\n\n")
	}

	if q.Kind.TakesOption() {
		b.WriteString(s.choices.View())
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(q.Language))
		b.WriteString("\n")
		b.WriteString(s.editor.View())
		b.WriteString("\n")
	}

	if hints := s.renderHints(q); hints != "" {
		b.WriteString("\n")
		b.WriteString(hints)
	}

	switch s.snap.Phase {
	case session.PhaseSubmitting:
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Grading your answer..."))
	case session.PhaseReviewing:
		if fb := s.snap.Feedback; fb != nil {
			b.WriteString("\n")
			b.WriteString(renderFeedback(fb, cw))
		}
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.notice))
	}
	return b.String()
}

func (s *PracticeScreen) renderHints(q *question.Question) string {
	h := s.snap.Hints
	if h.Index == 0 {
		if q.HintCount() == 0 {
			return ""
		}
		return theme.Hint.Render(fmt.Sprintf("%d hint(s) available", q.HintCount()))
	}
	label := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("Hint %d/%d", h.Index, q.HintCount()))
	return label + "  " + theme.Body.Render(h.Text)
}

func renderFeedback(fb *session.Feedback, cw int) string {
	eval := fb.Evaluation
	inner := cw - 6

	var b strings.Builder
	if eval.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite"))
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("   score %d/100   +%d XP", eval.Score, eval.XPAwarded)))
	b.WriteString("\n")

	if eval.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(inner).Render(eval.Feedback))
		b.WriteString("\n")
	}
	if !eval.Correct && eval.CorrectAnswer != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Answer: "))
		b.WriteString(theme.Body.Render(eval.CorrectAnswer))
		b.WriteString("\n")
	}
	for _, m := range eval.Mistakes {
		line := fmt.Sprintf("• [%s] %s", m.Type, m.Description)
		if m.Suggestion != "" {
			line += " Try: " + m.Suggestion
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Width(inner).Render(line))
		b.WriteString("\n")
	}
	if fb.Progress != nil {
		b.WriteString("\n")
		b.WriteString(components.NewMasteryBar("Mastery", fb.Progress.Mastery, inner).View())
		b.WriteString("\n")
	}
	if eval.RecommendedAction != "" {
		b.WriteString(theme.Hint.Render("Next: " + eval.RecommendedAction))
		b.WriteString("\n")
	}
	if lu := fb.LevelUp; lu != nil {
		b.WriteString("\n")
		b.WriteString(theme.LevelBadge.Render(fmt.Sprintf("LEVEL %d", lu.NewLevel)))
		if lu.Message != "" {
			b.WriteString("  " + theme.Body.Bold(true).Render(lu.Message))
		}
		b.WriteString("\n")
		for _, r := range lu.Rewards {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("  ✦ " + r))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Press Enter for the next question"))

	return components.AccentCard(b.String(), cw, eval.Correct)
}
