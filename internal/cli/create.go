package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/table"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new alias",
		Long: `Ask the relay for a new alias with default settings and print it.

Examples:
  fxrelay create
  fxrelay create --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, cmd)
		},
	}
	return cmd
}

func runCreate(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	s, err := openSession(opts, cmd, out, need{client: true, journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	ctl, err := newController(s, opts, out, table.AutoConfirm{})
	if err != nil {
		return err
	}

	created, err := ctl.Create(cmd.Context())
	if errors.Is(err, relay.ErrDryRun) {
		return out.DryRun("create skipped", nil)
	}
	if err != nil {
		return out.Fail("failed to create alias", err)
	}

	if out.Format == "json" {
		return out.Success(created)
	}
	fmt.Fprintf(out.Writer, "Created %s\n", summary(created))
	return nil
}
