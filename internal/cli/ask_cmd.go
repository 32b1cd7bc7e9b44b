package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/cli/formatter"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/spf13/cobra"
)

func newAskCmd(app *App, id *identity) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Send one request and earn XP for it",
		Example: `  taskquest ask "draft an email to the team about friday"
  taskquest ask --user ada research vector databases`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")

			stop := func() {}
			if app.interactive() && !raw {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "thinking")
			}
			resp, err := app.Dispatcher.Handle(cmd.Context(), service.Request{
				UserID:    id.user,
				SessionID: id.sessionID(),
				Input:     input,
			})
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, resp.Text)
				return nil
			}
			fmt.Fprint(out, formatter.FormatReply(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the plain-text reply with its markdown footer")

	return cmd
}
