package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/taskquest/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newShellCmd(app *App, id *identity) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Chat with the assistant and watch your XP grow",
		Long: `Start an interactive chat. Each line is dispatched as a request and
answered with the reply plus your updated XP, level, energy, and flow.
When stdin is not a terminal, requests are read one per line and the
plain-text replies are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return runLineShell(cmd.Context(), app, *id, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			p := tea.NewProgram(newShellModel(cmd.Context(), app, *id), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}

// runLineShell dispatches each non-blank line of in and writes the
// plain-text replies to out.
func runLineShell(ctx context.Context, app *App, id identity, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resp, err := app.Dispatcher.Handle(ctx, service.Request{
			UserID:    id.user,
			SessionID: id.sessionID(),
			Input:     line,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", resp.Text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}
