package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/service"
)

// FormatReply renders a dispatched reply followed by a styled progress
// footer carrying the same facts as the plain-text footer.
func FormatReply(resp service.Response) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(resp.Reply))
	b.WriteString("\n\n")
	b.WriteString(FormatFooter(resp.Stats, resp.Context))
	b.WriteString("\n")
	return b.String()
}

// FormatFooter renders the XP and energy lines shown under each reply.
func FormatFooter(stats service.Stats, sc domain.SessionContext) string {
	sep := Dim("  ·  ")
	xp := StyleGreen.Render(fmt.Sprintf("✨ +%d XP", stats.PointsAwarded)) + sep +
		Bold(fmt.Sprintf("Level %d", stats.Level)) + Dim(fmt.Sprintf(" (%d total XP)", stats.TotalPoints)) + sep +
		fmt.Sprintf("Tasks: %d", stats.TasksCompleted)
	energy := EnergyStyle(sc.EnergyLevel).Render(fmt.Sprintf("⚡ Energy %d/100", sc.EnergyLevel)) + sep +
		FlowIndicator(sc.FlowState)
	return Dim("───") + "\n" + xp + "\n" + energy
}
