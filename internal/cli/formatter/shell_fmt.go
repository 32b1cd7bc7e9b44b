package formatter

import (
	"fmt"
	"strings"
)

// FormatShellWelcome renders the banner shown when the shell starts.
func FormatShellWelcome(userID string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(StylePurple.Render("  taskquest") + Dim("  · "+userID) + "\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n\n")
	b.WriteString(StyleDim.Render("  Type a request and press Enter. Every task earns XP.") + "\n")
	b.WriteString(StyleDim.Render("  Type /help for shell commands, /quit to leave.") + "\n")
	return b.String()
}

type helpCategory struct {
	title    string
	commands [][]string
}

func renderHelpCategory(cat helpCategory) string {
	var b strings.Builder
	b.WriteString("\n " + StyleHeader.Render(strings.ToUpper(cat.title)) + "\n")
	for _, c := range cat.commands {
		fmt.Fprintf(&b, "  %-14s %s\n", StyleGreen.Render(c[0]), StyleDim.Render(c[1]))
	}
	return b.String()
}

// FormatShellHelp renders the shell command reference.
func FormatShellHelp() string {
	categories := []helpCategory{
		{
			title: "Progress",
			commands: [][]string{
				{"/stats", "Level, XP, energy, and flow"},
				{"/profile", "Work-style traits and tips"},
				{"/history", "Recently completed tasks"},
			},
		},
		{
			title: "Shell",
			commands: [][]string{
				{"/help", "Show this reference"},
				{"/quit", "Leave the shell"},
			},
		},
	}
	var b strings.Builder
	for _, c := range categories {
		b.WriteString(renderHelpCategory(c))
	}
	b.WriteString("\n" + Dim("  Anything else is sent as a request.") + "\n")
	return b.String()
}
