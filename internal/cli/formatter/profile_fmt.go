package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/service"
)

// ProfileView bundles what the profile screen shows.
type ProfileView struct {
	Profile         domain.TraitProfile
	Badge           service.Badge
	Recommendations []string
	Usage           []domain.AgentMetric
}

// FormatProfile renders the trait breakdown, tips, and per-category usage.
func FormatProfile(v ProfileView) string {
	var b strings.Builder

	b.WriteString(Header("Work style") + "\n\n")
	fmt.Fprintf(&b, "%s %s %s\n", v.Badge.Emoji, Bold(v.Badge.Name),
		Dim(fmt.Sprintf("(%.1f%%)", v.Profile.DominantScore)))
	b.WriteString(Dim(v.Profile.Description) + "\n\n")

	for _, tr := range domain.TraitOrder {
		name := service.Details(tr).Name
		fmt.Fprintf(&b, "  %s %-13s %s\n", TraitStyle(tr).Render(string(tr)), name,
			RenderTraitBar(v.Profile.Scores[tr], barWidth, TraitStyle(tr)))
	}

	b.WriteString("\n" + Header("Tips") + "\n")
	for _, r := range v.Recommendations {
		b.WriteString("  • " + r + "\n")
	}

	if len(v.Usage) > 0 {
		b.WriteString("\n" + Header("Usage") + "\n")
		rows := make([][]string, 0, len(v.Usage))
		for _, m := range v.Usage {
			rows = append(rows, []string{
				CategoryBadge(m.Category),
				fmt.Sprintf("%d", m.CallCount),
				fmt.Sprintf("%d", m.PointsGenerated),
				HumanTimestamp(m.LastUsed),
			})
		}
		b.WriteString(RenderTable([]string{"Category", "Calls", "XP", "Last used"}, rows, 1, 2))
	}
	return b.String()
}
