package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// TraitStyle returns the color used for a trait's bar and label.
func TraitStyle(tr domain.Trait) lipgloss.Style {
	switch tr {
	case domain.TraitProducer:
		return StyleRed
	case domain.TraitAdministrator:
		return StyleBlue
	case domain.TraitEntrepreneur:
		return StyleYellow
	case domain.TraitIntegrator:
		return StyleGreen
	default:
		return StyleDim
	}
}

// EnergyStyle colors an energy level: green above 50, yellow above 20,
// red otherwise.
func EnergyStyle(energy int) lipgloss.Style {
	switch {
	case energy > 50:
		return StyleGreen
	case energy > 20:
		return StyleYellow
	default:
		return StyleRed
	}
}

// FlowIndicator renders a flow state such as "◆ Deep work".
func FlowIndicator(f domain.FlowState) string {
	switch f {
	case domain.FlowDeepWork:
		return StylePurple.Render("◆ " + f.Label())
	case domain.FlowFocused:
		return StyleBlue.Render("● " + f.Label())
	case "":
		return StyleDim.Render("○ unknown")
	default:
		return StyleDim.Render("○ " + f.Label())
	}
}

// CategoryBadge returns a capitalized, purple-styled category label.
func CategoryBadge(c domain.Category) string {
	if c == "" {
		return StyleDim.Render("--")
	}
	s := string(c)
	return StylePurple.Render(strings.ToUpper(s[:1]) + s[1:])
}

// Header renders an uppercase section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
