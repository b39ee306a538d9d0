package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/store"
)

// Targets resolves timer targets and receives provisional tick seconds.
// *State implements it.
type Targets interface {
	ResolveTarget(id string) (taskID, projectID string)
	AddProvisional(taskID, projectID string, secs int64)
}

// Engine owns the single focus session. Starting is purely local; stopping
// hands the elapsed whole seconds to a background commit.
type Engine struct {
	mu    sync.Mutex
	state TimerState

	docs    Updater
	paths   Paths
	targets Targets
	clock   clock.Clock
	logger  zerolog.Logger
	metrics Recorder

	wg sync.WaitGroup
}

func NewEngine(docs Updater, paths Paths, targets Targets, opts ...Option) *Engine {
	o := buildOptions(opts)
	return &Engine{
		docs:    docs,
		paths:   paths,
		targets: targets,
		clock:   o.clock,
		logger:  o.logger.With().Str("component", "timer").Logger(),
		metrics: o.metrics,
	}
}

// Toggle starts a session on targetID (a task id, a project id, or "" for
// the default target) when idle, and stops the running session otherwise.
// It never fails: persistence errors on stop are logged only.
func (e *Engine) Toggle(targetID string) {
	e.mu.Lock()

	if !e.state.IsActive {
		taskID, projectID := e.targets.ResolveTarget(targetID)
		now := e.clock.Now()
		e.state = TimerState{
			IsActive:        true,
			StartTime:       &now,
			ActiveTaskID:    taskID,
			ActiveProjectID: projectID,
		}
		e.mu.Unlock()

		e.metrics.SetTimerActive(true)
		e.logger.Debug().Str("task", taskID).Str("project", projectID).Msg("session started")
		return
	}

	prev := e.state
	secs := int64(e.clock.Now().Sub(*prev.StartTime) / time.Second)
	e.state = TimerState{}
	e.mu.Unlock()

	e.metrics.SetTimerActive(false)
	e.logger.Debug().Int64("seconds", secs).Msg("session stopped")
	if secs <= 0 {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.commit(prev, secs)
	}()
}

// commit issues independent increments for the task and the project. A
// failure on one does not undo the other, and nothing is retried since a
// replayed increment would double-count. Seconds count as tracked once at
// least one write landed.
func (e *Engine) commit(ts TimerState, secs int64) {
	ctx := context.Background()
	inc := store.Increment(secs)
	saved := false

	if ts.ActiveTaskID != "" {
		err := e.docs.Update(ctx, e.paths.Task(ts.ActiveTaskID), store.Fields{
			"totalTime": inc,
		})
		e.metrics.RecordCommit("task", err)
		saved = saved || err == nil
		if err != nil {
			e.logger.Error().Err(err).Str("task", ts.ActiveTaskID).Int64("seconds", secs).Msg("save task time failed")
		}
	}

	if ts.ActiveProjectID != "" {
		err := e.docs.Update(ctx, e.paths.Project(ts.ActiveProjectID), store.Fields{
			"totalTime":   inc,
			"stats.today": inc,
			"stats.week":  inc,
			"stats.month": inc,
		})
		e.metrics.RecordCommit("project", err)
		saved = saved || err == nil
		if err != nil {
			e.logger.Error().Err(err).Str("project", ts.ActiveProjectID).Int64("seconds", secs).Msg("save project time failed")
		}
	}

	if saved {
		e.metrics.AddTracked(secs)
	}
}

// Tick is the one-second visual heartbeat. While a session runs it credits
// one provisional second to the cached task and project. It reports whether
// a session is running.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	ts := e.state
	e.mu.Unlock()

	if !ts.IsActive {
		return false
	}
	e.targets.AddProvisional(ts.ActiveTaskID, ts.ActiveProjectID, 1)
	return true
}

// State returns a copy of the current timer state.
func (e *Engine) State() TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	ts := e.state
	if ts.StartTime != nil {
		start := *ts.StartTime
		ts.StartTime = &start
	}
	return ts
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.IsActive
}

// Elapsed is the running session length, zero when idle.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked()
}

func (e *Engine) elapsedLocked() time.Duration {
	if !e.state.IsActive {
		return 0
	}
	d := e.clock.Now().Sub(*e.state.StartTime) + time.Duration(e.state.ElapsedBeforeStart)*time.Second
	if d < 0 {
		return 0
	}
	return d
}

// Display returns the seconds to show: the live session length while
// running, the stored total otherwise.
func (e *Engine) Display(stored int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsActive {
		return stored
	}
	return int64(e.elapsedLocked() / time.Second)
}

// Tracking reports whether the running session targets id, as task or project.
func (e *Engine) Tracking(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsActive || id == "" {
		return false
	}
	return e.state.ActiveTaskID == id || e.state.ActiveProjectID == id
}

// Wait blocks until every background commit has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
