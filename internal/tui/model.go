package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/roach88/fxrelay/internal/logging"
	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/table"
)

// Options configures a Model.
type Options struct {
	// Context bounds every store call started from the UI. Defaults to
	// context.Background().
	Context context.Context

	// DryRun shows the dry-run badge.
	DryRun bool

	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger

	// Keys defaults to DefaultKeyMap().
	Keys *KeyMap
}

type notice struct {
	text string
	err  bool
}

// loadedMsg reports the end of a Load.
type loadedMsg struct{ err error }

// doneMsg reports the end of a create, edit or delete.
type doneMsg struct {
	op   string
	text string
	err  error
}

// Model is the bubbletea model of the alias table.
type Model struct {
	ctl      *table.Controller
	prompter *Prompter
	ctx      context.Context
	log      logrus.FieldLogger
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	dryRun   bool

	modal   *modal
	notice  notice
	sortCol string
	sortDsc bool
	width   int
	height  int
}

// New creates the model. The prompter must be the one the controller was
// built with.
func New(ctl *table.Controller, prompter *Prompter, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	return Model{
		ctl:      ctl,
		prompter: prompter,
		ctx:      ctx,
		log:      log,
		keys:     keys,
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		dryRun:   opts.DryRun,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) load() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: ctl.Load(ctx)}
	}
}

// run starts fn off the event loop. fn may block on prompts.
func (m Model) run(op string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		text, err := fn(ctx)
		return doneMsg{op: op, text: text, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case promptRequest:
		if m.modal != nil {
			// One prompt at a time; a second request is dismissed.
			msg.answer(promptReply{})
			return m, nil
		}
		var cmd tea.Cmd
		m.modal, cmd = newModal(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.notice = notice{text: fmt.Sprintf("load failed: %v", msg.err), err: true}
		} else {
			m.notice = notice{text: fmt.Sprintf("loaded %d aliases", m.ctl.Len())}
		}
		return m, nil

	case doneMsg:
		m.notice = m.describe(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			if m.modal != nil {
				m.modal.req.answer(promptReply{})
				m.modal = nil
			}
			return m, tea.Quit
		}
		if m.modal != nil {
			reply, done, cmd := m.modal.update(msg, m.keys)
			if done {
				m.modal.req.answer(reply)
				m.modal = nil
			}
			return m, cmd
		}
		return m.handleKey(msg)
	}
	if m.modal != nil {
		return m, m.modal.forward(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.ctl.MoveCursor(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.ctl.MoveCursor(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.ctl.MoveCursor(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.ctl.MoveCursor(0, 1)
	case key.Matches(msg, m.keys.SortAsc):
		m.sort(false)
	case key.Matches(msg, m.keys.SortDesc):
		m.sort(true)
	case key.Matches(msg, m.keys.Reload):
		m.notice = notice{text: "reloading"}
		return m, m.load()
	case key.Matches(msg, m.keys.Create):
		ctl := m.ctl
		return m, m.run("create", func(ctx context.Context) (string, error) {
			a, err := ctl.Create(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("created %s", a.FullAddress), nil
		})
	case key.Matches(msg, m.keys.Edit):
		ctl := m.ctl
		return m, m.run("edit", func(ctx context.Context) (string, error) {
			return "", ctl.EditCursor(ctx)
		})
	case key.Matches(msg, m.keys.Delete):
		ctl := m.ctl
		return m, m.run("delete", func(ctx context.Context) (string, error) {
			return "", ctl.DeleteCursor(ctx)
		})
	}
	return m, nil
}

func (m *Model) sort(descending bool) {
	if m.ctl.Len() == 0 {
		return
	}
	_, col, _ := m.ctl.CursorKeys()
	if err := m.ctl.SortCursor(descending); err != nil {
		m.notice = notice{text: err.Error(), err: true}
		return
	}
	m.sortCol, m.sortDsc = col, descending
}

func (m Model) describe(msg doneMsg) notice {
	switch {
	case msg.err == nil:
		return notice{text: msg.text}
	case errors.Is(msg.err, relay.ErrDryRun):
		return notice{text: fmt.Sprintf("dry run: %s not sent", msg.op)}
	case errors.Is(msg.err, table.ErrSuperseded):
		return notice{text: fmt.Sprintf("%s applied remotely; table was reloaded meanwhile", msg.op)}
	case errors.Is(msg.err, context.Canceled):
		return notice{}
	}

	m.log.WithError(msg.err).WithField("op", msg.op).Warn("ui operation failed")
	var remote *relay.RemoteError
	if errors.As(msg.err, &remote) && remote.StatusCode != 0 {
		return notice{text: fmt.Sprintf("%s failed: HTTP %d", msg.op, remote.StatusCode), err: true}
	}
	return notice{text: fmt.Sprintf("%s failed: %v", msg.op, msg.err), err: true}
}
