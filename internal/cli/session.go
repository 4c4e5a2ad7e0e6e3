package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/fxrelay/internal/config"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/logging"
	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/table"
)

// session is the wiring shared by every command: resolved config, logger,
// relay client and journal.
type session struct {
	cfg     config.Config
	log     *logrus.Logger
	client  *relay.Client
	journal *journal.Journal
	closers []io.Closer
}

// need says which parts of a session a command uses.
type need struct {
	client  bool
	journal bool
}

// resolveConfig loads the config and applies flags set on the command line.
func resolveConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:      opts.ConfigPath,
		EnvFile:   opts.EnvFile,
		LookupEnv: opts.LookupEnv,
	})
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.DryRun
	}
	if flags.Changed("api-url") {
		cfg.APIURL = opts.APIURL
	}
	if flags.Changed("journal") {
		cfg.Journal = opts.Journal
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openSession(opts *RootOptions, cmd *cobra.Command, out *OutputFormatter, n need) (*session, error) {
	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return nil, out.Report(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	out.VerboseLog("config: %s (dry-run %t)", sourceName(cfg.Source), cfg.DryRun)

	log, closer, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return nil, out.Report(ExitCommandError, ErrCodeConfig, "failed to open log", err)
	}
	s := &session{cfg: cfg, log: log, closers: []io.Closer{closer}}

	if n.client {
		if err := cfg.RequireToken(); err != nil {
			s.Close()
			return nil, out.Report(ExitCommandError, ErrCodeConfig, "missing API token", err)
		}
		s.client, err = relay.New(relay.Options{
			BaseURL:      cfg.APIURL,
			Token:        cfg.Token,
			DryRun:       cfg.DryRun,
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			RateBurst:    cfg.RateBurst,
			HTTPClient:   opts.HTTPClient,
			Logger:       log,
			NewRequestID: opts.NewOperationID,
		})
		if err != nil {
			s.Close()
			return nil, out.Report(ExitCommandError, ErrCodeConfig, "failed to create relay client", err)
		}
	}

	if n.journal && cfg.Journal != "" {
		var jopts []journal.Option
		if opts.Clock != nil {
			jopts = append(jopts, journal.WithClock(opts.Clock))
		}
		s.journal, err = journal.Open(cfg.Journal, jopts...)
		if err != nil {
			// Mutations still work without a journal; reads of it do not.
			log.WithError(err).Warn("journal unavailable")
			out.VerboseLog("journal unavailable: %v", err)
			s.journal = nil
		} else {
			s.closers = append(s.closers, s.journal)
		}
	}

	log.WithFields(logrus.Fields{
		"config":  cfg.Source,
		"api_url": cfg.APIURL,
		"dry_run": cfg.DryRun,
		"command": cmd.Name(),
	}).Debug("session started")
	return s, nil
}

// controller builds a table controller over the session's relay client.
func (s *session) controller(opts *RootOptions, prompter table.Prompter) (*table.Controller, error) {
	cols := table.DefaultColumns()
	if len(s.cfg.Columns) > 0 {
		var err error
		cols, err = table.ColumnsByKey(s.cfg.Columns)
		if err != nil {
			return nil, err
		}
	}

	var rec table.Recorder
	if s.journal != nil {
		rec = s.journal
	}
	return table.New(s.client, table.Options{
		Columns:        cols,
		Prompter:       prompter,
		Recorder:       rec,
		Logger:         s.log,
		Location:       opts.Location,
		NewOperationID: opts.NewOperationID,
	}), nil
}

// Close releases the journal and flushes the log file.
func (s *session) Close() {
	// closers[0] is the log file; it goes last so earlier failures are logged.
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && i > 0 {
			s.log.WithError(err).Warn("close session")
		}
	}
}

func sourceName(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
