package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/table"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	SortBy     string
	Descending bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the alias table",
		Long: `Fetch every alias and print the table once.

Columns come from the "columns" config key. --sort takes a column key
(description, full_address, id, blocking, created_at, ...).

Examples:
  fxrelay list
  fxrelay list --sort created_at --desc
  fxrelay list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SortBy, "sort", "", "column key to sort by")
	cmd.Flags().BoolVar(&opts.Descending, "desc", false, "sort descending (by id when --sort is not given)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions, cmd, out, need{client: true})
	if err != nil {
		return err
	}
	defer s.Close()

	ctl, err := newController(s, opts.RootOptions, out, table.AutoConfirm{})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := ctl.Load(ctx); err != nil {
		return out.Fail("failed to load aliases", err)
	}

	sortBy := opts.SortBy
	if sortBy == "" && opts.Descending {
		sortBy = "id"
	}
	if sortBy != "" {
		if err := ctl.Sort(sortBy, opts.Descending); err != nil {
			return out.Fail("failed to sort", err)
		}
	}
	out.VerboseLog("loaded %d aliases", ctl.Len())

	rows := ctl.Rows()
	if out.Format == "json" {
		aliases := make([]alias.Alias, len(rows))
		for i, r := range rows {
			aliases[i] = r.Alias
		}
		return out.Success(aliases)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out.Writer, "No aliases.")
		return nil
	}
	fmt.Fprintln(out.Writer, renderPlainTable(ctl.Columns(), rows))
	return nil
}

// newController builds the session's controller, reporting bad column config
// as a command error.
func newController(s *session, opts *RootOptions, out *OutputFormatter, prompter table.Prompter) (*table.Controller, error) {
	ctl, err := s.controller(opts, prompter)
	if err != nil {
		return nil, out.Report(ExitCommandError, ErrCodeConfig, "invalid columns", err)
	}
	return ctl, nil
}

var plainCell = lipgloss.NewStyle().Padding(0, 1)

// renderPlainTable draws rows with box borders and no colors.
func renderPlainTable(cols []table.Column, rows []table.Row) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style { return plainCell })
	for _, r := range rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = strings.ReplaceAll(c, "\n", " ")
		}
		t.Row(cells...)
	}
	return t.String()
}

// summary is the one-line text form of an alias.
func summary(a alias.Alias) string {
	return fmt.Sprintf("%s (id %d) %s %q", a.FullAddress, a.ID, a.Blocking(), a.Description)
}
