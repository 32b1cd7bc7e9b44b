package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/taskquest/internal/teatest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShellDriver(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	m := newShellModel(context.Background(), app, identity{user: "ada"})
	d := teatest.New(t, m, teatest.WithSize(100, 30))
	d.DrainInit()
	return d
}

func shellState(t *testing.T, d *teatest.Driver) shellModel {
	t.Helper()
	m, ok := d.Model.(shellModel)
	require.True(t, ok)
	return m
}

func TestShellModel_DispatchesRequests(t *testing.T) {
	app, store := testApp(t)
	d := newShellDriver(t, app)

	assert.Contains(t, d.View(), "taskquest")

	d.Submit("send an email to bob")

	m := shellState(t, d)
	assert.False(t, m.busy)
	require.Len(t, m.transcript, 1)
	assert.Contains(t, m.transcript[0], "📧 **Email Agent:**")
	assert.Contains(t, m.transcript[0], "+25 XP")
	assert.Equal(t, 1, store.CallsTo("WriteProgress"))
	assert.Empty(t, m.input.Value())
}

func TestShellModel_LocalCommands(t *testing.T) {
	app, store := testApp(t)
	d := newShellDriver(t, app)

	d.Submit("research rust")
	d.Submit("/stats")
	d.Submit("/profile")
	d.Submit("/history")
	d.Submit("/help")
	d.Submit("/bogus")

	m := shellState(t, d)
	require.Len(t, m.transcript, 6)
	assert.Contains(t, m.transcript[1], "Level 1")
	assert.Contains(t, m.transcript[2], "Producer")
	assert.Contains(t, m.transcript[3], "#1")
	assert.Contains(t, m.transcript[4], "/quit")
	assert.Contains(t, m.transcript[5], "Unknown command /bogus.")
	assert.Equal(t, 1, store.CallsTo("WriteProgress"), "slash commands are not dispatched")
}

func TestShellModel_IgnoresBlankLines(t *testing.T) {
	app, store := testApp(t)
	d := newShellDriver(t, app)

	d.Submit("   ")
	d.PressEnter()

	assert.Empty(t, shellState(t, d).transcript)
	assert.Zero(t, store.CallsTo("WriteProgress"))
}

func TestShellModel_Quit(t *testing.T) {
	for _, quit := range []func(*teatest.Driver){
		func(d *teatest.Driver) { d.Submit("/quit") },
		func(d *teatest.Driver) { d.PressCtrlC() },
	} {
		app, _ := testApp(t)
		d := newShellDriver(t, app)
		quit(d)
		assert.True(t, d.Quitting)
		assert.Equal(t, "Goodbye.\n", stripANSI(d.View()))
	}
}

func TestShellModel_BusyIgnoresKeys(t *testing.T) {
	app, _ := testApp(t)
	m := newShellModel(context.Background(), app, identity{user: "ada"})
	m.busy = true
	m.pending = "research rust"

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	got := updated.(shellModel)
	assert.Empty(t, got.input.Value())
	assert.Contains(t, got.View(), "working on research rust")

	updated, _ = got.Update(dispatchDoneMsg{input: "research rust", err: assert.AnError})
	got = updated.(shellModel)
	assert.False(t, got.busy)
	require.Len(t, got.transcript, 1)
	assert.Contains(t, got.transcript[0], assert.AnError.Error())
}

func TestShellModel_HistoryNavigationAndPersistence(t *testing.T) {
	app, _ := testApp(t)
	app.HistoryPath = filepath.Join(t.TempDir(), "nested", "shell_history")
	d := newShellDriver(t, app)

	d.Submit("/help")
	d.Submit("/stats")

	d.PressUp()
	assert.Equal(t, "/stats", shellState(t, d).input.Value())
	d.PressUp()
	assert.Equal(t, "/help", shellState(t, d).input.Value())
	d.PressUp()
	assert.Equal(t, "/help", shellState(t, d).input.Value())
	d.PressDown()
	assert.Equal(t, "/stats", shellState(t, d).input.Value())
	d.PressDown()
	assert.Empty(t, shellState(t, d).input.Value())

	data, err := os.ReadFile(app.HistoryPath)
	require.NoError(t, err)
	assert.Equal(t, "/help\n/stats\n", string(data))

	reopened := newShellModel(context.Background(), app, identity{user: "ada"})
	assert.Equal(t, []string{"/help", "/stats"}, reopened.history)
}

func TestShellHistory_KeepsNewestLines(t *testing.T) {
	h := shellHistory{path: filepath.Join(t.TempDir(), "hist")}
	var b strings.Builder
	for i := 0; i < maxHistoryLines+5; i++ {
		b.WriteString("line\n")
	}
	b.WriteString("last\n")
	require.NoError(t, os.WriteFile(h.path, []byte(b.String()), 0o600))

	lines := h.load()
	assert.Len(t, lines, maxHistoryLines)
	assert.Equal(t, "last", lines[len(lines)-1])

	assert.Nil(t, shellHistory{}.load())
	assert.Nil(t, shellHistory{path: filepath.Join(t.TempDir(), "missing")}.load())
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
