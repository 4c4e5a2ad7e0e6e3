package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/tui"
)

// NewUICommand creates the ui command. The root command runs it when no
// subcommand is given.
func NewUICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive alias table",
		Long: `Open the interactive alias table.

Keys:
  ( / )        sort ascending / descending by the cursor column
  ctrl+n       create an alias
  e            edit the cursor cell (description or blocking mode)
  delete       delete the cursor row
  r            reload
  arrows/hjkl  move
  q, ctrl+c    quit
  esc          cancel an open prompt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(rootOpts, cmd)
		},
	}
	return cmd
}

func runUI(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	s, err := openSession(opts, cmd, out, need{client: true, journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	prompter := tui.NewPrompter()
	ctl, err := newController(s, opts, out, prompter)
	if err != nil {
		return err
	}

	model := tui.New(ctl, prompter, tui.Options{
		Context: cmd.Context(),
		DryRun:  s.cfg.DryRun,
		Logger:  s.log,
	})
	in := opts.Stdin
	if in == nil {
		in = cmd.InOrStdin()
	}
	if err := tui.Run(cmd.Context(), model, in, cmd.OutOrStdout()); err != nil {
		return out.Report(ExitFailure, ErrCodeGeneric, "ui failed", err)
	}
	return nil
}
