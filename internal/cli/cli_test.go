package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/tracker"
)

// isolateHome points the config, log and default database locations at a
// temporary directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	env := &cmdEnv{}
	t.Cleanup(env.close)

	cmd := newRootCmd(env, BuildInfo{Version: "test"})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDB(t *testing.T, path string, meta *tracker.ResetMeta, projects ...tracker.Project) {
	t.Helper()
	st, err := store.New(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	paths := tracker.FlatPaths()
	for _, p := range projects {
		require.NoError(t, st.Set(ctx, paths.Project(p.ID), p))
	}
	if meta != nil {
		require.NoError(t, st.Set(ctx, paths.Meta(), *meta))
	}
}

func readProject(t *testing.T, path, id string) tracker.Project {
	t.Helper()
	st, err := store.New(path)
	require.NoError(t, err)
	defer st.Close()

	var p tracker.Project
	require.NoError(t, st.Get(context.Background(), tracker.FlatPaths().Project(id), &p))
	return p
}

func currentMeta() *tracker.ResetMeta {
	m := tracker.MarkersAt(time.Now())
	return &tracker.ResetMeta{
		LastDailyReset:   m.Day,
		LastWeeklyReset:  m.Week,
		LastMonthlyReset: m.Month,
		LastYear:         m.Year,
		LastWeekYear:     m.WeekYear,
		Initialized:      true,
	}
}

func staleMeta() *tracker.ResetMeta {
	return &tracker.ResetMeta{
		LastDailyReset:   "Mon Jan 01 2001",
		LastWeeklyReset:  1,
		LastMonthlyReset: 0,
		LastYear:         2001,
		LastWeekYear:     2001,
		Initialized:      true,
	}
}

func alphaProject() tracker.Project {
	return tracker.Project{
		ID:        "p1",
		Name:      "Alpha",
		Icon:      "rocket",
		TotalTime: 36000,
		Stats:     tracker.Stats{Today: 3600, Week: 7200, Month: 10800},
		Order:     1,
	}
}

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(&cmdEnv{}, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, want := range []string{"focusflow", "--config", "--db", "--uid", "--verbose", "--quiet", "status", "reset", "export"} {
		assert.Contains(t, output, want)
	}
}

func TestRootCmd_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		info           BuildInfo
		expectContains []string
	}{
		{
			name:           "full version info",
			info:           BuildInfo{Version: "1.2.0", Commit: "abc1234", Date: "2024-03-05"},
			expectContains: []string{"1.2.0", "abc1234", "2024-03-05"},
		},
		{
			name:           "default dev version",
			info:           BuildInfo{},
			expectContains: []string{"dev", "none", "unknown"},
		},
		{
			name:           "partial version info",
			info:           BuildInfo{Version: "2.0.0-beta"},
			expectContains: []string{"2.0.0-beta", "none", "unknown"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRootCmd(&cmdEnv{}, tc.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"--version"})

			require.NoError(t, cmd.Execute())
			for _, expected := range tc.expectContains {
				assert.Contains(t, buf.String(), expected)
			}
		})
	}
}

func TestRootCmd_VerboseQuietExclusive(t *testing.T) {
	home := isolateHome(t)

	_, err := runCmd(t, "--db", filepath.Join(home, "f.db"), "--verbose", "--quiet", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "if any flags in the group")
}

func TestConfigShow(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")

	out, err := runCmd(t, "--db", db, "--uid", "alice", "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "db_path: "+db)
	assert.Contains(t, out, "uid: alice")
	assert.Contains(t, out, "check_interval: 1m0s")
	assert.Contains(t, out, "clear_delay: 2s")
}

func TestConfigShow_FromFile(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("reset:\n  check_interval: 30s\nlog:\n  level: debug\n"), 0o600))

	out, err := runCmd(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "check_interval: 30s")
	assert.Contains(t, out, "level: debug")
}

func TestConfigShow_InvalidFile(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("reset:\n  check_interval: -5s\n"), 0o600))

	_, err := runCmd(t, "--config", cfgPath, "config", "show")
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, currentMeta(), alphaProject())

	out, err := runCmd(t, "--db", db, "status")
	require.NoError(t, err)

	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Daily goal    1h / 8h (12%)")
	assert.Contains(t, out, "Weekly goal   2h / 40h (5%)")
	assert.Contains(t, out, "Monthly goal  3h / 160h (1%)")
	assert.Contains(t, out, "Lifetime      10h")
	assert.NotContains(t, out, "Pending resets")
}

func TestStatus_PendingResets(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, staleMeta(), alphaProject())

	out, err := runCmd(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending resets: daily, weekly, monthly")
}

func TestStatus_Empty(t *testing.T) {
	home := isolateHome(t)

	out, err := runCmd(t, "--db", filepath.Join(home, "empty.db"), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet.")
	assert.Contains(t, out, "Daily goal    0m / 8h (0%)")
}

func TestReset_DryRunWritesNothing(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, staleMeta(), alphaProject())

	out, err := runCmd(t, "--db", db, "reset", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would reset: daily, weekly, monthly")

	p := readProject(t, db, "p1")
	assert.Equal(t, int64(3600), p.Stats.Today)
	assert.Equal(t, int64(7200), p.Stats.Week)
}

func TestReset_ZeroesCrossedPeriods(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, staleMeta(), alphaProject())

	out, err := runCmd(t, "--db", db, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset daily, weekly, monthly on 1 projects.")

	p := readProject(t, db, "p1")
	assert.Equal(t, tracker.Stats{}, p.Stats)
	assert.Equal(t, int64(36000), p.TotalTime, "lifetime total is never reset")

	out, err = runCmd(t, "--db", db, "reset", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to reset")
}

func TestReset_NoProjects(t *testing.T) {
	home := isolateHome(t)

	out, err := runCmd(t, "--db", filepath.Join(home, "empty.db"), "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects to reset.")
}

func TestExport_WritesFile(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, currentMeta(), alphaProject())
	outPath := filepath.Join(home, "report.json")

	out, err := runCmd(t, "--db", db, "export", "--format", "json", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 projects to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Alpha"`)
}

func TestExport_UnknownFormat(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")

	_, err := runCmd(t, "--db", db, "export", "--format", "xml", "--out", filepath.Join(home, "x.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestSelectLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		quiet      bool
		configured string
		want       zerolog.Level
	}{
		{name: "verbose wins", verbose: true, configured: "error", want: zerolog.DebugLevel},
		{name: "quiet", quiet: true, want: zerolog.WarnLevel},
		{name: "configured", configured: "error", want: zerolog.ErrorLevel},
		{name: "default", want: zerolog.InfoLevel},
		{name: "unparsable falls back", configured: "loud", want: zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, selectLevel(tc.verbose, tc.quiet, tc.configured))
		})
	}
}

func TestInitLogger_WritesLogFile(t *testing.T) {
	isolateHome(t)

	logger, closer := InitLogger(zerolog.InfoLevel, true)
	logger.Info().Msg("hello from test")
	require.NoError(t, closer.Close())

	path, err := LogFilePath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestInitLoggerWithWriter(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	logger := InitLoggerWithWriter(buf, zerolog.WarnLevel)
	logger.Info().Msg("dropped")
	logger.Warn().Str("component", "cli").Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"component":"cli"`)
}

// lockedBuffer serializes log writes from the session goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRuntimeClose_CommitsRunningSession(t *testing.T) {
	home := isolateHome(t)
	db := filepath.Join(home, "focus.db")
	seedDB(t, db, currentMeta(), alphaProject())

	cfg := config.Default()
	cfg.DBPath = db
	logs := &lockedBuffer{}
	logger := InitLoggerWithWriter(logs, zerolog.DebugLevel)

	r, err := openRuntime(cfg, logger)
	require.NoError(t, err)

	fake := clock.NewFake(time.Now())
	r.engine = tracker.NewEngine(r.store, r.paths, r.state, tracker.WithLogger(logger), tracker.WithClock(fake))

	r.session.Start()
	require.Eventually(t, r.state.ProjectsLoaded, 2*time.Second, 10*time.Millisecond)

	r.engine.Toggle("p1")
	fake.Advance(90 * time.Second)
	require.NoError(t, r.close())

	p := readProject(t, db, "p1")
	assert.Equal(t, int64(36090), p.TotalTime)
	assert.Equal(t, int64(3690), p.Stats.Today)
	assert.NotContains(t, logs.String(), "failed")
}
