package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/metrics"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/tracker"
)

// runtime is one opened account: the store plus the tracker components
// wired over it.
type runtime struct {
	cfg     *config.Config
	store   *store.Store
	paths   tracker.Paths
	state   *tracker.State
	metrics *metrics.Metrics
	logger  zerolog.Logger

	engine      *tracker.Engine
	coordinator *tracker.Coordinator
	service     *tracker.Service
	session     *tracker.Session
}

func openRuntime(cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	paths := tracker.UserPaths(cfg.Account.UID)
	state := tracker.NewState()
	m := metrics.New()

	opts := []tracker.Option{
		tracker.WithLogger(logger),
		tracker.WithMetrics(m),
		tracker.WithClearDelays(cfg.Inbox.ClearDelay, cfg.Reminders.ClearDelay),
	}
	coordinator := tracker.NewCoordinator(st, paths, opts...)

	logger.Debug().Str("db_path", dbPath).Str("uid", cfg.Account.UID).Msg("store opened")

	return &runtime{
		cfg:         cfg,
		store:       st,
		paths:       paths,
		state:       state,
		metrics:     m,
		logger:      logger,
		engine:      tracker.NewEngine(st, paths, state, opts...),
		coordinator: coordinator,
		service:     tracker.NewService(st, paths, state, opts...),
		session:     tracker.NewSession(st, paths, state, coordinator, opts...),
	}, nil
}

// close stops a running session, drains pending writes and closes the store.
func (r *runtime) close() error {
	if r.engine.Active() {
		r.engine.Toggle("")
	}
	// Unsubscribe before draining so the final commit does not start a
	// reset check against a store that is about to close.
	r.session.Stop()
	r.engine.Wait()
	r.service.Wait()
	return r.store.Close()
}

// loadProjects reads the projects collection directly, without a session.
func (r *runtime) loadProjects(ctx context.Context) ([]tracker.Project, error) {
	docs, err := r.store.List(ctx, r.paths.Projects())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return tracker.DecodeDocs[tracker.Project](r.logger, docs), nil
}

func (r *runtime) loadTasks(ctx context.Context) ([]tracker.Task, error) {
	docs, err := r.store.List(ctx, r.paths.Tasks())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tracker.DecodeDocs[tracker.Task](r.logger, docs), nil
}

// loadPreferences falls back to the defaults when the document is missing.
func (r *runtime) loadPreferences(ctx context.Context) (tracker.Preferences, error) {
	prefs := tracker.DefaultPreferences()
	err := r.store.Get(ctx, r.paths.Preferences(), &prefs)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

// loadSnapshot fills the state from one read of each collection so the
// one-shot commands see what the TUI would.
func (r *runtime) loadSnapshot(ctx context.Context) error {
	projects, err := r.loadProjects(ctx)
	if err != nil {
		return err
	}
	tasks, err := r.loadTasks(ctx)
	if err != nil {
		return err
	}
	prefs, err := r.loadPreferences(ctx)
	if err != nil {
		return err
	}
	r.state.ReplaceProjects(projects)
	r.state.ReplaceTasks(tasks)
	r.state.SetPreferences(prefs)
	return nil
}
