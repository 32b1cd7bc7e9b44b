package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/cli/formatter"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// dispatchDoneMsg carries the result of a request sent from the shell.
type dispatchDoneMsg struct {
	input string
	resp  service.Response
	err   error
}

// shellModel is the bubbletea Model for the chat shell.
type shellModel struct {
	input   textinput.Model
	spinner spinner.Model
	width   int

	ctx     context.Context
	app     *App
	id      identity
	busy    bool
	pending string

	store      shellHistory
	history    []string
	historyIdx int

	// transcript holds everything printed above the prompt, oldest first.
	transcript []string
	quitting   bool
}

func newShellModel(ctx context.Context, app *App, id identity) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 2000
	ti.Placeholder = "ask for anything"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	store := shellHistory{path: app.HistoryPath}
	hist := store.load()

	return shellModel{
		input:      ti,
		spinner:    sp,
		ctx:        ctx,
		app:        app,
		id:         id,
		store:      store,
		history:    hist,
		historyIdx: len(hist),
	}
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.Println(formatter.FormatShellWelcome(m.id.user)))
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len("taskquest ❯ ")-1, 10)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.updatePrompt(msg)

	case dispatchDoneMsg:
		m.busy = false
		m.pending = ""
		out := formatter.FormatReply(msg.resp)
		if msg.err != nil {
			out = formatter.StyleRed.Render("✖ ") + msg.err.Error()
		}
		cmd := m.emit(out)
		return m, cmd

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}
	if m.busy {
		return m.spinner.View() + " " + formatter.Dim("working on "+formatter.Truncate(m.pending, 40))
	}
	return formatter.StylePurple.Render("taskquest") + formatter.Dim(" ❯ ") + m.input.View()
}

func (m shellModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		m.addHistory(line)
		if strings.HasPrefix(line, "/") {
			return m.runShellCommand(line)
		}
		m.busy = true
		m.pending = line
		return m, tea.Batch(m.spinner.Tick, m.dispatch(line))

	case tea.KeyUp:
		m.historyUp()
		return m, nil

	case tea.KeyDown:
		m.historyDown()
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m shellModel) dispatch(input string) tea.Cmd {
	ctx, d, id := m.ctx, m.app.Dispatcher, m.id
	return func() tea.Msg {
		resp, err := d.Handle(ctx, service.Request{UserID: id.user, SessionID: id.sessionID(), Input: input})
		return dispatchDoneMsg{input: input, resp: resp, err: err}
	}
}

func (m shellModel) runShellCommand(line string) (tea.Model, tea.Cmd) {
	name := strings.ToLower(strings.Fields(line)[0])
	ctx, d := m.ctx, m.app.Dispatcher

	var out string
	switch name {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		out = formatter.FormatShellHelp()
	case "/stats":
		out = formatter.FormatStats(m.id.user, d.Stats(ctx, m.id.user), d.Context(ctx, m.id.sessionID()))
	case "/profile":
		out = formatter.FormatProfile(profileViewOf(d.ProfileSnapshot(ctx, m.id.user)))
	case "/history":
		out = formatter.FormatHistory(d.History(ctx, m.id.user, defaultListLimit), m.app.now())
	default:
		out = formatter.StyleYellow.Render(fmt.Sprintf("Unknown command %s.", name)) + " " + formatter.Dim("Type /help.")
	}
	cmd := m.emit(out)
	return m, cmd
}

// emit records out in the transcript and prints it above the prompt.
func (m *shellModel) emit(out string) tea.Cmd {
	out = strings.TrimRight(out, "\n")
	m.transcript = append(m.transcript, out)
	return tea.Println(out)
}

func (m *shellModel) addHistory(line string) {
	m.history = append(m.history, line)
	m.historyIdx = len(m.history)
	m.store.append(line)
}

func (m *shellModel) historyUp() {
	if m.historyIdx > 0 {
		m.historyIdx--
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
}

func (m *shellModel) historyDown() {
	if m.historyIdx < len(m.history)-1 {
		m.historyIdx++
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
		return
	}
	m.historyIdx = len(m.history)
	m.input.Reset()
}
