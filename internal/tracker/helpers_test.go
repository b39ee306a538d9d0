package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/store"
)

var nopLogger = zerolog.Nop()

// recordingStore counts the writes the tracker issues directly.
type recordingStore struct {
	*store.Store

	mu      sync.Mutex
	updates []recordedUpdate
	commits int
}

type recordedUpdate struct {
	path   string
	fields store.Fields
}

func (r *recordingStore) Update(ctx context.Context, path string, f store.Fields) error {
	r.mu.Lock()
	r.updates = append(r.updates, recordedUpdate{path: path, fields: f})
	r.mu.Unlock()
	return r.Store.Update(ctx, path, f)
}

func (r *recordingStore) Commit(ctx context.Context, b *store.Batch) error {
	r.mu.Lock()
	r.commits++
	r.mu.Unlock()
	return r.Store.Commit(ctx, b)
}

func (r *recordingStore) Updates() []recordedUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedUpdate(nil), r.updates...)
}

func (r *recordingStore) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func newTestStore(t *testing.T) *recordingStore {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &recordingStore{Store: s}
}

// at builds a UTC instant.
func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func newFakeClock(t time.Time) *clock.Fake {
	return clock.NewFake(t)
}

func putProject(t *testing.T, s *recordingStore, p Project) {
	t.Helper()
	require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Project(p.ID), p))
}

func putTask(t *testing.T, s *recordingStore, task Task) {
	t.Helper()
	require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Task(task.ID), task))
}

func getProject(t *testing.T, s *recordingStore, id string) Project {
	t.Helper()
	var p Project
	require.NoError(t, s.Store.Get(context.Background(), FlatPaths().Project(id), &p))
	return p
}

func getTask(t *testing.T, s *recordingStore, id string) Task {
	t.Helper()
	var task Task
	require.NoError(t, s.Store.Get(context.Background(), FlatPaths().Task(id), &task))
	return task
}

func getMeta(t *testing.T, s *recordingStore) ResetMeta {
	t.Helper()
	var m ResetMeta
	require.NoError(t, s.Store.Get(context.Background(), FlatPaths().Meta(), &m))
	return m
}

// refresh loads the store's collections into state the way the session
// subscriptions would.
func refresh(t *testing.T, s *recordingStore, state *State) {
	t.Helper()
	ctx := context.Background()
	paths := FlatPaths()

	docs, err := s.Store.List(ctx, paths.Tasks())
	require.NoError(t, err)
	state.ReplaceTasks(DecodeDocs[Task](nopLogger, docs))

	docs, err = s.Store.List(ctx, paths.Projects())
	require.NoError(t, err)
	state.ReplaceProjects(DecodeDocs[Project](nopLogger, docs))

	docs, err = s.Store.List(ctx, paths.Inbox())
	require.NoError(t, err)
	state.ReplaceInbox(DecodeDocs[InboxTask](nopLogger, docs))

	docs, err = s.Store.List(ctx, paths.Reminders())
	require.NoError(t, err)
	state.ReplaceReminders(DecodeDocs[Reminder](nopLogger, docs))
}
