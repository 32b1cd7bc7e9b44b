package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45%. The bar is green
// above 66%, yellow from 33%, and red below.
func RenderProgress(pct float64, width int) string {
	pct = clampUnit(pct)
	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar(pct, width)), pct*100)
}

// RenderTraitBar renders a trait score (0-100) in the trait's color.
func RenderTraitBar(score float64, width int, style lipgloss.Style) string {
	return fmt.Sprintf("%s %5.1f%%", style.Render(bar(clampUnit(score/100), width)), score)
}

func bar(pct float64, width int) string {
	if width < 2 {
		width = 2
	}
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

func clampUnit(pct float64) float64 {
	return max(0, min(pct, 1))
}
