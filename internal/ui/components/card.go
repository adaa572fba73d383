package components

import (
	"github.com/abhisek/devquest/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for centered screens.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Card wraps content in a rounded-border box at width cw.
func Card(content string, cw int) string {
	return theme.Card.Width(cw).Render(content)
}

// AccentCard is a Card with a colored border, for results and level-ups.
func AccentCard(content string, cw int, good bool) string {
	border := theme.Error
	if good {
		border = theme.Success
	}
	return theme.Card.BorderForeground(border).Width(cw).Render(content)
}
