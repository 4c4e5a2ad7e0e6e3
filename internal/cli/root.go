package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DryRun     bool
	APIURL     string
	Journal    string

	// The fields below are not flags. Zero values use the process
	// environment; tests fill them in.
	LookupEnv      func(string) (string, bool)
	EnvFile        string
	HTTPClient     *http.Client
	Location       *time.Location
	Clock          func() time.Time
	NewOperationID func() string
	Stdin          io.Reader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fxrelay CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts. Flags
// parsed from the command line are written into opts.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fxrelay",
		Short: "Manage Firefox Relay email aliases",
		Long: `Browse, sort, create, edit and delete Firefox Relay email aliases.

Without a subcommand fxrelay opens the interactive table. The API token is
read from FXRELAY_TOKEN (the environment or a .env file).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(opts, cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (also sets log level to debug)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/fxrelay/config.yaml)")
	pf.BoolVar(&opts.DryRun, "dry-run", false, "log writes instead of sending them")
	pf.StringVar(&opts.APIURL, "api-url", "", "relay API root (overrides config)")
	pf.StringVar(&opts.Journal, "journal", "", "journal database path (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewUICommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
