package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/fxrelay/internal/alias"
)

// modal is the single open prompt.
type modal struct {
	req    promptRequest
	input  textinput.Model
	cursor int
}

func newModal(req promptRequest) (*modal, tea.Cmd) {
	d := &modal{req: req, cursor: req.selected}
	if d.cursor < 0 || d.cursor >= len(req.options) {
		d.cursor = 0
	}
	if req.kind != promptText {
		return d, nil
	}
	d.input = textinput.New()
	d.input.CharLimit = 256
	d.input.Prompt = "> "
	d.input.SetValue(req.initial)
	d.input.CursorEnd()
	return d, d.input.Focus()
}

// update handles one key. done reports that reply must be sent and the
// modal closed.
func (d *modal) update(msg tea.KeyMsg, keys KeyMap) (reply promptReply, done bool, cmd tea.Cmd) {
	if key.Matches(msg, keys.Cancel) {
		return promptReply{}, true, nil
	}

	switch d.req.kind {
	case promptConfirm:
		switch {
		case key.Matches(msg, keys.Accept), key.Matches(msg, keys.Yes):
			return promptReply{ok: true}, true, nil
		case key.Matches(msg, keys.No):
			return promptReply{}, true, nil
		}
		return promptReply{}, false, nil

	case promptText:
		if key.Matches(msg, keys.Accept) {
			return promptReply{text: d.input.Value(), ok: true}, true, nil
		}
		d.input, cmd = d.input.Update(msg)
		return promptReply{}, false, cmd

	case promptChoose:
		switch {
		case key.Matches(msg, keys.Accept):
			return promptReply{index: d.cursor, ok: true}, true, nil
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Left):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down), key.Matches(msg, keys.Right):
			if d.cursor < len(d.req.options)-1 {
				d.cursor++
			}
		}
		return promptReply{}, false, nil
	}
	return promptReply{}, false, nil
}

// forward passes a non-key message, such as a cursor blink, to the text
// input.
func (d *modal) forward(msg tea.Msg) tea.Cmd {
	if d.req.kind != promptText {
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *modal) view() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(d.req.title))
	b.WriteString("\n\n")

	switch d.req.kind {
	case promptConfirm:
		b.WriteString(mutedStyle.Render("[enter/y] yes   [esc/n] no"))
	case promptText:
		b.WriteString(d.input.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("[enter] save   [esc] cancel"))
	case promptChoose:
		for i, o := range d.req.options {
			marker := "  "
			if i == d.cursor {
				marker = "> "
			}
			b.WriteString(marker)
			b.WriteString(optionLabel(o))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render("[↑/↓] move   [enter] choose   [esc] cancel"))
	default:
		fmt.Fprintf(&b, "unsupported prompt %d", d.req.kind)
	}
	return modalStyle.Render(b.String())
}

// optionLabel styles blocking-mode options and leaves others as they are.
func optionLabel(option string) string {
	m, err := alias.ParseBlockingMode(option)
	if err != nil {
		return option
	}
	return blockingStyle(m).Render(BlockingLabel(m))
}
