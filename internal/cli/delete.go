package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/table"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an alias",
		Long: `Delete one alias. Without --yes the command asks for confirmation on
standard input; any answer other than "y" or "yes" leaves the alias alone.

Examples:
  fxrelay delete 42
  fxrelay delete 42 --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runDelete(opts *DeleteOptions, cmd *cobra.Command, idArg string) error {
	out := newFormatter(opts.RootOptions, cmd)

	id, err := alias.ParseID(idArg)
	if err != nil {
		return out.Fail("invalid alias id", err)
	}

	s, err := openSession(opts.RootOptions, cmd, out, need{client: true, journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	var prompter table.Prompter = table.AutoConfirm{}
	if !opts.Yes {
		in := opts.Stdin
		if in == nil {
			in = cmd.InOrStdin()
		}
		prompter = newLinePrompter(in, cmd.ErrOrStderr())
	}

	ctl, err := newController(s, opts.RootOptions, out, prompter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := ctl.Load(ctx); err != nil {
		return out.Fail("failed to load aliases", err)
	}

	key := alias.FormatID(id)
	target, _ := ctl.Get(key)
	err = ctl.Delete(ctx, key)
	if errors.Is(err, relay.ErrDryRun) {
		return out.DryRun(fmt.Sprintf("delete of alias %d not sent", id), nil)
	}
	if err != nil {
		return out.Fail(fmt.Sprintf("failed to delete alias %d", id), err)
	}

	if _, still := ctl.Get(key); still {
		if out.Format == "json" {
			return out.Success(map[string]interface{}{"deleted": false, "id": id})
		}
		fmt.Fprintln(out.Writer, "Cancelled.")
		return nil
	}

	if out.Format == "json" {
		return out.Success(map[string]interface{}{"deleted": true, "id": id})
	}
	fmt.Fprintf(out.Writer, "Deleted %s\n", summary(target))
	return nil
}
