package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/httpapi"
	"github.com/alexanderramin/taskquest/internal/intelligence"
	"github.com/alexanderramin/taskquest/internal/leveling"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/alexanderramin/taskquest/internal/sessionstore"
	"github.com/alexanderramin/taskquest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires an App around a real dispatcher backed by the fake store.
func testApp(t *testing.T) (*App, *testutil.FakeRecordStore) {
	t.Helper()
	store := testutil.NewFakeRecordStore()
	tracker := service.NewProgressTracker(store, service.DefaultRewardTable(), leveling.DefaultCurve())
	scorer := service.NewTraitScorer(store, service.DefaultTraitMapping())
	sessions := sessionstore.NewMemory(time.Hour)
	t.Cleanup(func() { _ = sessions.Close() })

	d, err := service.NewDispatcher(service.DispatcherDeps{
		Classifier: intelligence.NewKeywordClassifier(nil),
		Handlers:   intelligence.NewHandlers(nil, service.NewReportSource(tracker, scorer)),
		Tracker:    tracker,
		Scorer:     scorer,
		Sessions:   sessions,
		Activity:   store,
	})
	require.NoError(t, err)

	return &App{
		Dispatcher:  d,
		DefaultUser: "local",
		Now:         time.Now,
	}, store
}

// executeCmd runs the root command and captures stdout and stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestAsk_PrintsReplyAndFooter(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "ask", "send", "an", "email", "to", "the", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "📧 **Email Agent:**")
	assert.Contains(t, out, "+25 XP")
	assert.Contains(t, out, "Level 1")
	assert.Contains(t, out, "Energy 78/100")
}

func TestAsk_RawPrintsMarkdownFooter(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "ask", "--raw", "research", "vector", "databases")
	require.NoError(t, err)
	assert.Contains(t, out, "\n\n---\n**✨ XP Earned:** +50 XP | **Level 1** (50 total XP) | **Tasks:** 1\n")
	assert.Contains(t, out, "**⚡ Energy:** 75/100 | **Flow State:** Deep work")
}

func TestAsk_Errors(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "ask")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "ask", "   ")
	assert.ErrorIs(t, err, service.ErrEmptyInput)
}

func TestUserAndSessionFlags(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "--user", "ada", "--session", "s1", "ask", "research", "go")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "stats", "--json", "-u", "ada", "-s", "s1")
	require.NoError(t, err)
	var got struct {
		Stats   service.Stats         `json:"stats"`
		Context domain.SessionContext `json:"context"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(50), got.Stats.TotalPoints)
	assert.Equal(t, 75, got.Context.EnergyLevel)

	out, err = executeCmd(t, app, "stats", "--json", "-u", "ada")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 80, got.Context.EnergyLevel, "session defaults to the user id")

	out, err = executeCmd(t, app, "stats", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(0), got.Stats.TotalPoints)
}

func TestStatsAndProfileCards(t *testing.T) {
	app, _ := testApp(t)
	for _, in := range []string{"research rust", "research go", "send an email"} {
		_, err := executeCmd(t, app, "ask", in)
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "PROGRESS")
	assert.Contains(t, out, "Level 2")
	assert.Contains(t, out, "25/150 XP into this level, 125 to level 3")

	out, err = executeCmd(t, app, "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "🚀")
	assert.Contains(t, out, "Producer")
	assert.Contains(t, out, "USAGE")

	out, err = executeCmd(t, app, "profile", "--json")
	require.NoError(t, err)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "recommendations")
}

func TestHistoryAndChats(t *testing.T) {
	app, _ := testApp(t)
	for _, in := range []string{"research rust", "hello", "send an email"} {
		_, err := executeCmd(t, app, "ask", in)
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "history", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "#2")
	assert.NotContains(t, out, "#1")

	out, err = executeCmd(t, app, "chats")
	require.NoError(t, err)
	assert.Contains(t, out, "research rust")
	assert.Contains(t, out, "hello")

	_, err = executeCmd(t, app, "history", "--limit", "0")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	t.Run("non-interactive needs --yes", func(t *testing.T) {
		app, store := testApp(t)
		_, err := executeCmd(t, app, "reset")
		assert.ErrorIs(t, err, errNeedsConfirmation)
		assert.Zero(t, store.CallsTo("ResetUser"))
	})

	t.Run("--yes resets", func(t *testing.T) {
		app, store := testApp(t)
		_, err := executeCmd(t, app, "ask", "research rust")
		require.NoError(t, err)

		out, err := executeCmd(t, app, "reset", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Reset local")
		assert.Equal(t, 1, store.CallsTo("ResetUser"))

		out, err = executeCmd(t, app, "stats", "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"total_points": 0`)
	})

	t.Run("interactive confirm declined", func(t *testing.T) {
		app, store := testApp(t)
		app.IsInteractive = func() bool { return true }
		var asked string
		app.Confirm = func(title, _ string) (bool, error) {
			asked = title
			return false, nil
		}

		out, err := executeCmd(t, app, "reset", "-u", "ada")
		require.NoError(t, err)
		assert.Equal(t, "Reset all progress for ada?", asked)
		assert.Contains(t, out, "Cancelled.")
		assert.Zero(t, store.CallsTo("ResetUser"))
	})

	t.Run("interactive confirm accepted", func(t *testing.T) {
		app, store := testApp(t)
		app.IsInteractive = func() bool { return true }
		app.Confirm = func(string, string) (bool, error) { return true, nil }

		_, err := executeCmd(t, app, "reset")
		require.NoError(t, err)
		assert.Equal(t, 1, store.CallsTo("ResetUser"))
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		app, store := testApp(t)
		store.FailOn("ResetUser")
		_, err := executeCmd(t, app, "reset", "--yes")
		assert.ErrorIs(t, err, testutil.ErrFakeStore)
	})
}

func TestServe_RequiresHandler(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "serve")
	assert.EqualError(t, err, "serve needs an HTTP handler")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	app, _ := testApp(t)
	handler := httpapi.NewServer(app.Dispatcher, app.DefaultUser).Router()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, handler, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestShell_LineModeWhenNotInteractive(t *testing.T) {
	app, _ := testApp(t)

	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetIn(strings.NewReader("send an email\n\n   \nresearch rust\n"))
	root.SetArgs([]string{"shell"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "**✨ XP Earned:**"))
	assert.Contains(t, out, "(75 total XP) | **Tasks:** 2")
}

type failingDispatcher struct{ Dispatcher }

func (failingDispatcher) Handle(context.Context, service.Request) (service.Response, error) {
	return service.Response{}, errors.New("dispatcher down")
}

func TestShell_LineModeStopsOnError(t *testing.T) {
	app := &App{Dispatcher: failingDispatcher{}, DefaultUser: "local"}
	err := runLineShell(context.Background(), app, identity{user: "local"}, strings.NewReader("hi\n"), new(bytes.Buffer))
	assert.EqualError(t, err, "dispatcher down")
}
