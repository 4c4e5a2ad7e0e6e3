package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/table"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Description string
	Blocking    string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an alias's description or blocking mode",
		Long: `Send a partial update for one alias and print the record the relay
returns.

Blocking modes: ALL (alias disabled), PROMOTIONS (promotional mail
blocked), NONE (everything forwarded).

Examples:
  fxrelay edit 42 --description "newsletters"
  fxrelay edit 42 --blocking promotions
  fxrelay edit 42 --blocking ALL --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Description, "description", "", "new description")
	cmd.Flags().StringVar(&opts.Blocking, "blocking", "", "new blocking mode (ALL|PROMOTIONS|NONE)")

	return cmd
}

func runEdit(opts *EditOptions, cmd *cobra.Command, idArg string) error {
	out := newFormatter(opts.RootOptions, cmd)

	flags := cmd.Flags()
	if !flags.Changed("description") && !flags.Changed("blocking") {
		return out.Report(ExitCommandError, ErrCodeValidation, "nothing to change: pass --description or --blocking", nil)
	}

	id, err := alias.ParseID(idArg)
	if err != nil {
		return out.Fail("invalid alias id", err)
	}

	var patch alias.Patch
	if flags.Changed("description") {
		patch = patch.Merge(alias.PatchForDescription(opts.Description))
	}
	if flags.Changed("blocking") {
		mode, err := alias.ParseBlockingMode(opts.Blocking)
		if err != nil {
			return out.Fail("invalid blocking mode", err)
		}
		patch = patch.Merge(alias.PatchForBlocking(mode))
	}

	s, err := openSession(opts.RootOptions, cmd, out, need{client: true, journal: true})
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

	updated, err := ctl.Apply(ctx, alias.FormatID(id), patch)
	if err != nil {
		return out.Fail(fmt.Sprintf("failed to update alias %d", id), err)
	}

	if s.cfg.DryRun {
		if err := out.DryRun(fmt.Sprintf("update of alias %d not sent", id), updated); err != nil {
			return err
		}
		if out.Format != "json" {
			fmt.Fprintf(out.Writer, "Current %s\n", summary(updated))
		}
		return nil
	}

	if out.Format == "json" {
		return out.Success(updated)
	}
	fmt.Fprintf(out.Writer, "Updated %s\n", summary(updated))
	return nil
}
