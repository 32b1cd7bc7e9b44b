package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/service"
)

const barWidth = 24

// FormatStats renders the user's level card.
func FormatStats(userID string, stats service.Stats, sc domain.SessionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold(fmt.Sprintf("Level %d", stats.Level)), Dim("· "+userID))
	fmt.Fprintf(&b, "%s\n", RenderProgress(float64(stats.ProgressPercent)/100, barWidth))
	fmt.Fprintf(&b, "%s\n\n", Dim(fmt.Sprintf("%d/%d XP into this level, %d to level %d",
		stats.PointsIntoLevel, stats.PointsForNextLevel, stats.PointsToNextLevel, stats.Level+1)))
	fmt.Fprintf(&b, "Total XP   %s\n", StyleGreen.Render(fmt.Sprintf("%d", stats.TotalPoints)))
	fmt.Fprintf(&b, "Tasks      %d\n", stats.TasksCompleted)
	fmt.Fprintf(&b, "Energy     %s\n", EnergyStyle(sc.EnergyLevel).Render(fmt.Sprintf("%d/100", sc.EnergyLevel)))
	fmt.Fprintf(&b, "Flow       %s", FlowIndicator(sc.FlowState))
	return RenderBox("Progress", b.String()) + "\n"
}
