package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrDetached is returned by prompts asked before the Prompter is attached to
// a running program.
var ErrDetached = errors.New("prompter is not attached to a program")

type promptKind int

const (
	promptConfirm promptKind = iota
	promptText
	promptChoose
)

// promptRequest travels from a controller goroutine to the model, which
// answers on reply exactly once.
type promptRequest struct {
	kind     promptKind
	title    string
	initial  string
	options  []string
	selected int
	reply    chan promptReply
}

type promptReply struct {
	text  string
	index int
	ok    bool
}

func (r promptRequest) answer(p promptReply) {
	// reply is buffered; a requester that gave up never reads it.
	select {
	case r.reply <- p:
	default:
	}
}

// Prompter implements table.Prompter by posting requests into the bubbletea
// event loop and blocking the calling goroutine until the model answers.
//
// Thread-safety: all methods are safe for concurrent use.
type Prompter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewPrompter returns a detached prompter. Call Attach before use.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach sets the function used to deliver requests, usually
// (*tea.Program).Send.
func (p *Prompter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Prompter) ask(ctx context.Context, req promptRequest) (promptReply, error) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send == nil {
		return promptReply{}, ErrDetached
	}

	req.reply = make(chan promptReply, 1)
	send(req)
	select {
	case r := <-req.reply:
		return r, nil
	case <-ctx.Done():
		return promptReply{}, ctx.Err()
	}
}

// Confirm implements table.Prompter.
func (p *Prompter) Confirm(ctx context.Context, title string) (bool, error) {
	r, err := p.ask(ctx, promptRequest{kind: promptConfirm, title: title})
	return r.ok, err
}

// Text implements table.Prompter.
func (p *Prompter) Text(ctx context.Context, title, initial string) (string, bool, error) {
	r, err := p.ask(ctx, promptRequest{kind: promptText, title: title, initial: initial})
	return r.text, r.ok, err
}

// Choose implements table.Prompter.
func (p *Prompter) Choose(ctx context.Context, title string, options []string, selected int) (int, bool, error) {
	r, err := p.ask(ctx, promptRequest{kind: promptChoose, title: title, options: options, selected: selected})
	return r.index, r.ok, err
}
