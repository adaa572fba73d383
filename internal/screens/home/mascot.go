package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default blue
	MascotCelebrating                      // Amber, star eyes: streak of three days or more
	MascotAlert                            // Rose, exclamation: no streak running
)

const mascotIdle = `  ╭─────╮
 (│ ◉ ◉ │)
  │  ▾  │
  │ go! │
  ╰─────╯`

const mascotCelebrating = `  ╭─────╮
 (│ ★ ★ │)
  │  ▿  │
  │ go! │
  ╰┬───┬╯
   ╰───╯`

const mascotAlert = `  ╭─────╮
 (│ ◉ ◉ │) !
  │  ▵  │
  │ go? │
  ╰─────╯`

// mascotFor picks the variant for a learner's current streak.
func mascotFor(streak int) MascotVariant {
	switch {
	case streak >= 3:
		return MascotCelebrating
	case streak == 0:
		return MascotAlert
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch variant {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Accent
	case MascotAlert:
		art = mascotAlert
		fg = theme.Error
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
