package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmt/todolist/internal/client/state"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

const (
	errorNoticeTTL   = 6 * time.Second
	successNoticeTTL = 4 * time.Second
	defaultTimeout   = 10 * time.Second
)

// TaskClient is the subset of the API client the view needs.
type TaskClient interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, text string, status domain.TaskStatus) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type mode int

const (
	modeBrowse mode = iota
	modeInput
	modeEdit
	modeConfirm
)

type responseMsg struct {
	resp state.Response
}

type dismissMsg struct {
	seq int
}

type Options struct {
	Timeout time.Duration
	Dark    bool
	Logger  *logger.Logger
}

type Model struct {
	client  TaskClient
	logger  *logger.Logger
	timeout time.Duration

	state   state.State
	initial *state.Request

	input   textinput.Model
	draft   textinput.Model
	spinner spinner.Model

	mode     mode
	cursor   int
	dark     bool
	styles   palette
	width    int
	quitting bool
}

func NewModel(client TaskClient, opts Options) Model {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.Prompt = "+ "
	input.CharLimit = 500

	draft := textinput.New()
	draft.Prompt = "✎ "
	draft.CharLimit = 500

	st, req := state.Init()

	return Model{
		client:  client,
		logger:  log,
		timeout: timeout,
		state:   st,
		initial: req,
		input:   input,
		draft:   draft,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		dark:    opts.Dark,
		styles:  newPalette(opts.Dark),
	}
}

func (m Model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	return tea.Batch(m.perform(*m.initial), m.spinner.Tick)
}

// State exposes the reducer state, mostly for tests.
func (m Model) State() state.State {
	return m.state
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-8, 10)
		m.draft.Width = max(msg.Width-8, 10)
		return m, nil

	case responseMsg:
		cmd := m.dispatch(msg.resp)
		return m, cmd

	case dismissMsg:
		cmd := m.dispatch(state.DismissNotice{Seq: msg.seq})
		return m, cmd

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "ctrl+t" {
			m.toggleTheme()
			return m, nil
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case "t":
		m.toggleTheme()
	case "r":
		cmd := m.dispatch(state.Load{})
		return m, cmd
	case "a", "n", "i":
		m.mode = modeInput
		cmd := m.input.Focus()
		return m, cmd
	case "enter", " ", "s":
		if task, ok := m.selected(); ok {
			cmd := m.dispatch(state.ChangeStatus{ID: task.ID, Status: task.Status.Next()})
			return m, cmd
		}
	case "S":
		if task, ok := m.selected(); ok {
			cmd := m.dispatch(state.ChangeStatus{ID: task.ID, Status: task.Status.Prev()})
			return m, cmd
		}
	case "e":
		if task, ok := m.selected(); ok {
			cmd := m.dispatch(state.StartEdit{ID: task.ID})
			if m.mode == modeEdit {
				focus := m.draft.Focus()
				return m, tea.Batch(cmd, focus)
			}
			return m, cmd
		}
	case "d", "x":
		if task, ok := m.selected(); ok {
			cmd := m.dispatch(state.AskDelete{ID: task.ID})
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = modeBrowse
		return m, nil
	case "enter":
		cmd := m.dispatch(state.SubmitCreate{})
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	syncCmd := m.dispatch(state.SetInput{Text: m.input.Value()})
	return m, tea.Batch(cmd, syncCmd)
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.dispatch(state.CancelEdit{})
		return m, cmd
	case "enter":
		cmd := m.dispatch(state.SaveEdit{})
		return m, cmd
	}
	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	syncCmd := m.dispatch(state.SetDraft{Text: m.draft.Value()})
	return m, tea.Batch(cmd, syncCmd)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		cmd := m.dispatch(state.ConfirmDelete{})
		return m, cmd
	case "n", "N", "esc":
		cmd := m.dispatch(state.CancelDelete{})
		return m, cmd
	case "t":
		m.toggleTheme()
	}
	return m, nil
}

// dispatch runs a through the reducer and turns its outcome into commands:
// the network call for a new request and the timer for a new notice.
func (m *Model) dispatch(a state.Action) tea.Cmd {
	prevSeq := m.state.Notice.Seq
	next, req := state.Reduce(m.state, a)
	m.state = next
	m.sync()

	var cmds []tea.Cmd
	if req != nil {
		m.logger.Debugw("tui_request", "kind", req.Kind.String(), "token", req.Token, "id", req.ID)
		cmds = append(cmds, m.perform(*req), m.spinner.Tick)
	}
	if n := m.state.Notice; n.Seq != prevSeq && n.Kind != state.NoticeNone {
		cmds = append(cmds, dismissAfter(n))
	}
	return tea.Batch(cmds...)
}

// sync derives the widget state from the reducer state.
func (m *Model) sync() {
	switch {
	case m.state.PendingDelete != "":
		m.mode = modeConfirm
	case m.state.Editing != nil:
		if m.mode != modeEdit {
			m.mode = modeEdit
			m.draft.SetValue(m.state.Editing.Draft)
			m.draft.CursorEnd()
		}
	case m.mode == modeEdit || m.mode == modeConfirm:
		m.draft.Blur()
		m.mode = modeBrowse
	}

	if m.input.Value() != m.state.Input {
		m.input.SetValue(m.state.Input)
	}

	if m.cursor >= len(m.state.Tasks) {
		m.cursor = len(m.state.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Tasks) {
		return domain.Task{}, false
	}
	return m.state.Tasks[m.cursor], true
}

func (m *Model) toggleTheme() {
	m.dark = !m.dark
	m.styles = newPalette(m.dark)
}

// perform sends req and reports the outcome as a responseMsg.
func (m Model) perform(req state.Request) tea.Cmd {
	client, timeout, log := m.client, m.timeout, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp := state.Response{Token: req.Token}
		switch req.Kind {
		case state.RequestList:
			resp.Tasks, resp.Err = client.ListTasks(ctx)
		case state.RequestCreate:
			resp.Task, resp.Err = client.CreateTask(ctx, req.Text, "")
		case state.RequestUpdateStatus:
			resp.Task, resp.Err = client.UpdateStatus(ctx, req.ID, req.Status)
		case state.RequestUpdateText:
			resp.Task, resp.Err = client.UpdateText(ctx, req.ID, req.Text)
		case state.RequestDelete:
			resp.Err = client.DeleteTask(ctx, req.ID)
		}
		if resp.Err != nil {
			log.Warnw("tui_request_failed", "kind", req.Kind.String(), "id", req.ID, "error", resp.Err)
		}
		return responseMsg{resp: resp}
	}
}

func dismissAfter(n state.Notice) tea.Cmd {
	ttl := successNoticeTTL
	if n.Kind == state.NoticeError {
		ttl = errorNoticeTTL
	}
	seq := n.Seq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return dismissMsg{seq: seq}
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	p := m.styles
	var b strings.Builder

	b.WriteString(p.title.Render("LMT To-Do List"))
	if m.state.Loading {
		b.WriteString(" " + m.spinner.View() + p.muted.Render("loading…"))
	}
	b.WriteString("\n\n")

	if m.mode == modeInput {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(p.muted.Render("press a to add a task"))
	}
	b.WriteString("\n\n")

	if len(m.state.Tasks) == 0 && !m.state.Loading {
		b.WriteString(p.muted.Render("  No tasks yet."))
		b.WriteString("\n")
	}
	for i, task := range m.state.Tasks {
		editing := m.state.Editing != nil && m.state.Editing.ID == task.ID
		var line string
		if editing {
			line = m.draft.View()
		} else {
			line = fmt.Sprintf("%s %s", task.Text, p.statusBadge(task.Status))
		}
		if i == m.cursor {
			b.WriteString(p.selected.Render("> " + line))
		} else {
			b.WriteString(p.item.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if id := m.state.PendingDelete; id != "" {
		text := id
		if task, ok := m.state.Task(id); ok {
			text = task.Text
		}
		b.WriteString("\n")
		b.WriteString(p.dialog.Render(fmt.Sprintf("Delete %q?\n(y) confirm   (n) cancel", text)))
		b.WriteString("\n")
	}

	if n := m.state.Notice; n.Kind != state.NoticeNone {
		b.WriteString("\n")
		if n.Kind == state.NoticeError {
			b.WriteString(p.failure.Render("✗ " + n.Text))
		} else {
			b.WriteString(p.success.Render("✓ " + n.Text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.help.Render(m.helpText()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpText() string {
	switch m.mode {
	case modeInput:
		return "enter add • esc back • ctrl+t theme"
	case modeEdit:
		return "enter save • esc cancel • ctrl+t theme"
	case modeConfirm:
		return "y delete • n cancel • t theme"
	}
	return "j/k move • a add • s/S status • e edit • d delete • r reload • t theme • q quit"
}

// Run starts the view full-screen and blocks until the user quits.
func Run(client TaskClient, opts Options) error {
	p := tea.NewProgram(NewModel(client, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
