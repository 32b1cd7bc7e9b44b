package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// FormatHistory renders completed tasks, newest first.
func FormatHistory(entries []domain.TaskHistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No completed tasks yet.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", e.SequenceNumber),
			CategoryBadge(e.Category),
			StyleGreen.Render(fmt.Sprintf("+%d", e.PointsAwarded)),
			HumanTimestampFrom(e.CreatedAt, now),
		})
	}
	return Header("History") + "\n" + RenderTable([]string{"Task", "Category", "XP", "When"}, rows, 0, 2)
}

// FormatChats renders logged exchanges, newest first, one input per row.
func FormatChats(chats []domain.ChatLogEntry, now time.Time) string {
	if len(chats) == 0 {
		return Dim("No conversations yet.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Conversations") + "\n")
	for _, c := range chats {
		fmt.Fprintf(&b, "%s %s %s\n", Dim(HumanTimestampFrom(c.CreatedAt, now)), CategoryBadge(c.Category), Truncate(c.Input, 60))
		fmt.Fprintf(&b, "  %s\n", Dim(Truncate(firstLine(c.Response), 72)))
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
