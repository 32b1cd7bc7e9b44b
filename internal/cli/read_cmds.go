package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexanderramin/taskquest/internal/cli/formatter"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/spf13/cobra"
)

const defaultListLimit = 10

func newStatsCmd(app *App, id *identity) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show level, XP, energy, and flow state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stats := app.Dispatcher.Stats(ctx, id.user)
			sc := app.Dispatcher.Context(ctx, id.sessionID())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"stats": stats, "context": sc})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(id.user, stats, sc))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a card")

	return cmd
}

func newProfileCmd(app *App, id *identity) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show work-style traits, badge, and tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := profileView(cmd, app, id.user)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"profile":         view.Profile,
					"badge":           view.Badge,
					"recommendations": view.Recommendations,
					"usage":           view.Usage,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProfile(view))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a report")

	return cmd
}

func profileView(cmd *cobra.Command, app *App, userID string) formatter.ProfileView {
	return profileViewOf(app.Dispatcher.ProfileSnapshot(cmd.Context(), userID))
}

func profileViewOf(snap service.ProfileSnapshot) formatter.ProfileView {
	return formatter.ProfileView{
		Profile:         snap.Profile,
		Badge:           snap.Badge,
		Recommendations: snap.Recommendations,
		Usage:           snap.Usage,
	}
}

func newHistoryCmd(app *App, id *identity) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			entries := app.Dispatcher.History(cmd.Context(), id.user, limit)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Number of entries to show")

	return cmd
}

func newChatsCmd(app *App, id *identity) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List recent requests and replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			chats := app.Dispatcher.Chats(cmd.Context(), id.user, limit)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChats(chats, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Number of entries to show")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
