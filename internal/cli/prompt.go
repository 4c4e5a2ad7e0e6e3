package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// linePrompter answers table prompts from a line-oriented reader. End of
// input dismisses the prompt.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Confirm(ctx context.Context, title string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", title)
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *linePrompter) Text(ctx context.Context, title, initial string) (string, bool, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", title, initial)
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	if line == "" {
		return initial, true, nil
	}
	return line, true, nil
}

func (p *linePrompter) Choose(ctx context.Context, title string, options []string, selected int) (int, bool, error) {
	fmt.Fprintln(p.out, title)
	for i, o := range options {
		mark := " "
		if i == selected {
			mark = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", mark, i+1, o)
	}
	fmt.Fprint(p.out, "choice: ")

	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return 0, false, err
	}
	if line == "" {
		return selected, true, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return 0, false, nil
	}
	return n - 1, true, nil
}

// readLine returns the next trimmed line. ok is false at end of input.
func (p *linePrompter) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(line), true, nil
}
