package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ███████╗██╗   ██╗ ██████╗ ██╗   ██╗███████╗███████╗████████╗
 ██╔══██╗██╔════╝██║   ██║██╔═══██╗██║   ██║██╔════╝██╔════╝╚══██╔══╝
 ██║  ██║█████╗  ██║   ██║██║   ██║██║   ██║█████╗  ███████╗   ██║
 ██║  ██║██╔══╝  ╚██╗ ██╔╝██║▄▄ ██║██║   ██║██╔══╝  ╚════██║   ██║
 ██████╔╝███████╗ ╚████╔╝ ╚██████╔╝╚██████╔╝███████╗███████║   ██║
 ╚═════╝ ╚══════╝  ╚═══╝   ╚══▀▀═╝  ╚═════╝ ╚══════╝╚══════╝   ╚═╝`

const bannerCompact = "D E V Q U E S T"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 69

// RenderBanner returns the DEVQUEST banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the full art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
