package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Alias string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the local mutation journal",
		Long: `Print the mutations fxrelay attempted, oldest first.

Every create, edit and delete is journaled with its request id and
outcome (ok, failed, dry_run or discarded). The journal is local; it is
not fetched from the relay.

Examples:
  fxrelay history
  fxrelay history --alias 42
  fxrelay history --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Alias, "alias", "", "only show mutations of this alias id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show at most the N most recent entries (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	var filter journal.Filter
	if opts.Alias != "" {
		id, err := alias.ParseID(opts.Alias)
		if err != nil {
			return out.Fail("invalid alias id", err)
		}
		filter.AliasID = id
	}
	if opts.Limit < 0 {
		return out.Report(ExitCommandError, ErrCodeValidation, "--limit must not be negative", nil)
	}
	filter.Limit = opts.Limit

	s, err := openSession(opts.RootOptions, cmd, out, need{journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	if s.journal == nil {
		msg := "journal is disabled"
		if s.cfg.Journal != "" {
			msg = fmt.Sprintf("journal %s could not be opened", s.cfg.Journal)
		}
		return out.Report(ExitCommandError, ErrCodeJournal, msg, nil)
	}

	entries, err := s.journal.List(cmd.Context(), filter)
	if err != nil {
		return out.Report(ExitFailure, ErrCodeJournal, "failed to read journal", err)
	}

	if out.Format == "json" {
		return out.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out.Writer, "No mutations recorded.")
		return nil
	}
	for _, e := range entries {
		writeEntry(out.Writer, e)
	}
	return nil
}

func writeEntry(w io.Writer, e journal.Entry) {
	fmt.Fprintf(w, "#%d %s %s alias=%d %s request=%s",
		e.Seq, e.RecordedAt.UTC().Format(time.RFC3339), e.Op, e.AliasID, e.Outcome, e.RequestID)
	if p := string(e.Payload); p != "" && p != "{}" {
		fmt.Fprintf(w, " payload=%s", p)
	}
	if e.Error != "" {
		fmt.Fprintf(w, " error=%q", e.Error)
	}
	fmt.Fprintln(w)
}
