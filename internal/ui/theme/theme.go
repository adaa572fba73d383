package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, terminal-dark with a Go-blue primary
var (
	Primary   = lipgloss.Color("#00ADD8") // Gopher Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Code = lipgloss.NewStyle().
		Foreground(Secondary).
		Background(BgCard).
		Padding(0, 1)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	LevelBadge = lipgloss.NewStyle().
			Background(Accent).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 1)
)

// Difficulty tags, keyed by the service's difficulty names.
var (
	beginnerTag     = lipgloss.NewStyle().Foreground(Success)
	intermediateTag = lipgloss.NewStyle().Foreground(Accent)
	advancedTag     = lipgloss.NewStyle().Foreground(Error)
)

// DifficultyTag renders a difficulty name in its tier color. Unknown names
// fall back to dim text.
func DifficultyTag(difficulty string) string {
	switch difficulty {
	case "beginner":
		return beginnerTag.Render(difficulty)
	case "intermediate":
		return intermediateTag.Render(difficulty)
	case "advanced", "expert":
		return advancedTag.Render(difficulty)
	}
	return lipgloss.NewStyle().Foreground(TextDim).Render(difficulty)
}
