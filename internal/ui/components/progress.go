package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64 // 0..1
	Caption string  // shown after the bar; defaults to the percentage
	Width   int
}

// NewXPBar shows progress toward the next level threshold.
func NewXPBar(xpTotal, threshold int, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   "XP",
		Percent: percent,
		Caption: fmt.Sprintf("%d / %d", xpTotal, threshold),
		Width:   width,
	}
}

// NewMasteryBar shows a 0-100 mastery score.
func NewMasteryBar(label string, mastery, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: float64(mastery) / 100,
		Width:   width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	caption := p.Caption
	if caption == "" {
		caption = fmt.Sprintf("%d%%", int(p.Percent*100))
	}
	caption = "  " + caption

	barWidth := max(p.Width-lipgloss.Width(result)-lipgloss.Width(caption), 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(caption)

	return result
}
