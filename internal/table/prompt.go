package table

import "context"

// Prompter asks the user for input. Every method blocks until the prompt is
// answered or dismissed. A dismissed prompt returns ok=false and a nil error.
type Prompter interface {
	// Confirm asks an accept/cancel question.
	Confirm(ctx context.Context, title string) (ok bool, err error)

	// Text asks for a free-text value pre-filled with initial.
	Text(ctx context.Context, title, initial string) (value string, ok bool, err error)

	// Choose asks for one of options, pre-selecting options[selected].
	Choose(ctx context.Context, title string, options []string, selected int) (index int, ok bool, err error)
}

// AutoConfirm accepts every confirmation and dismisses every value prompt.
// Used by non-interactive commands run with --yes.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

func (AutoConfirm) Text(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (AutoConfirm) Choose(context.Context, string, []string, int) (int, bool, error) {
	return 0, false, nil
}
