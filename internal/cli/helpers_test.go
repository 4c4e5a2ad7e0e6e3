package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/config"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/testutil"
)

// cliEnv is a FakeRelay plus an isolated config, environment and journal.
type cliEnv struct {
	relay       *testutil.FakeRelay
	dir         string
	configPath  string
	journalPath string
	env         map[string]string
	stdin       string
}

func newCLIEnv(t *testing.T, seed ...alias.Alias) *cliEnv {
	t.Helper()

	fake := testutil.NewFakeRelay(t, seed...)
	dir := t.TempDir()
	e := &cliEnv{
		relay:       fake,
		dir:         dir,
		configPath:  filepath.Join(dir, "config.yaml"),
		journalPath: filepath.Join(dir, "journal.db"),
	}
	e.env = map[string]string{
		config.EnvToken:   testutil.FakeToken,
		config.EnvAPIURL:  fake.URL(),
		config.EnvLogFile: "",
		config.EnvJournal: e.journalPath,
	}
	require.NoError(t, os.WriteFile(e.configPath, []byte("rate_limit: 0\ntimeout: 5s\n"), 0o644))
	return e
}

func writeConfig(e *cliEnv, content string) error {
	return os.WriteFile(e.configPath, []byte(content), 0o644)
}

func (e *cliEnv) lookup(key string) (string, bool) {
	v, ok := e.env[key]
	return v, ok
}

// run executes the root command with args and returns stdout, stderr and the
// command error.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	opts := &RootOptions{
		LookupEnv:      e.lookup,
		EnvFile:        filepath.Join(e.dir, "missing.env"),
		Location:       time.UTC,
		Clock:          testutil.NewStepClock(time.Second).Now,
		NewOperationID: testutil.NewSequentialIDs("op").Next,
	}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) journalEntries(t *testing.T) []journal.Entry {
	t.Helper()
	j, err := journal.Open(e.journalPath)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	return entries
}

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}
