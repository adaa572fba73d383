package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/ui/theme"
)

// Choice is one selectable option.
type Choice struct {
	ID   string
	Text string
}

// MultiChoice is a single-answer option selector. It knows nothing about
// correctness until Reveal is called with the graded result.
type MultiChoice struct {
	Choices  []Choice
	Selected int

	revealed  bool
	correct   bool
	correctID string
}

// NewMultiChoice creates a selector with the first option highlighted.
func NewMultiChoice(choices []Choice) MultiChoice {
	return MultiChoice{Choices: choices}
}

// Update handles arrow navigation and number shortcuts. Returns whether
// the learner picked an option with a number key.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.revealed {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < len(m.Choices) {
				m.Selected = idx
				return m, true
			}
		}
	}
	return m, false
}

// SelectedID returns the ID of the highlighted option.
func (m MultiChoice) SelectedID() string {
	if m.Selected < 0 || m.Selected >= len(m.Choices) {
		return ""
	}
	return m.Choices[m.Selected].ID
}

// Reveal freezes the selector and marks the chosen option right or wrong.
// correctText, when non-empty, highlights the option with that text.
func (m *MultiChoice) Reveal(correct bool, correctText string) {
	m.revealed = true
	m.correct = correct
	for _, c := range m.Choices {
		if c.Text == correctText {
			m.correctID = c.ID
		}
	}
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, c.Text)

		var style lipgloss.Style
		switch {
		case m.revealed && i == m.Selected && m.correct:
			style = theme.Correct
		case m.revealed && i == m.Selected:
			style = theme.Incorrect
		case m.revealed && c.ID == m.correctID:
			style = theme.Correct
		case m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
