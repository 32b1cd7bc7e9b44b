package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Dispatcher is the part of service.Dispatcher the commands use.
type Dispatcher interface {
	Handle(ctx context.Context, req service.Request) (service.Response, error)
	Stats(ctx context.Context, userID string) service.Stats
	Context(ctx context.Context, sessionID string) domain.SessionContext
	ProfileSnapshot(ctx context.Context, userID string) service.ProfileSnapshot
	History(ctx context.Context, userID string, limit int) []domain.TaskHistoryEntry
	Chats(ctx context.Context, userID string, limit int) []domain.ChatLogEntry
	Reset(ctx context.Context, userID, sessionID string) error
}

// App holds what the commands need.
type App struct {
	Dispatcher  Dispatcher
	DefaultUser string

	// HTTP is the handler served by the serve command, listening on Addr
	// unless --addr overrides it.
	HTTP   http.Handler
	Addr   string
	Logger *zap.Logger

	// HistoryPath is the shell history file. Empty disables history.
	HistoryPath string

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh form.
	Confirm func(title, description string) (bool, error)
	// Now is the clock used for relative timestamps. Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// identity is the user and session selected by the persistent flags.
type identity struct {
	user    string
	session string
}

func (id *identity) sessionID() string {
	if id.session != "" {
		return id.session
	}
	return id.user
}

func addIdentityFlags(fs *pflag.FlagSet, id *identity, defaultUser string) {
	fs.StringVarP(&id.user, "user", "u", defaultUser, "User the command acts for")
	fs.StringVarP(&id.session, "session", "s", "", "Session whose energy and flow to use (defaults to the user)")
}

// NewRootCmd creates the top-level "taskquest" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	id := &identity{}

	root := &cobra.Command{
		Use:           "taskquest",
		Short:         "Task assistant that turns requests into XP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addIdentityFlags(root.PersistentFlags(), id, app.DefaultUser)

	root.AddCommand(
		newAskCmd(app, id),
		newStatsCmd(app, id),
		newProfileCmd(app, id),
		newHistoryCmd(app, id),
		newChatsCmd(app, id),
		newResetCmd(app, id),
		newServeCmd(app),
		newShellCmd(app, id),
	)

	return root
}
