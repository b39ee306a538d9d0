package tracker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/store"
)

// Session keeps a State in sync with one account's collections. Every
// project snapshot also drives first-run seeding and the reset check.
type Session struct {
	docs        DocumentStore
	paths       Paths
	state       *State
	coordinator *Coordinator
	logger      zerolog.Logger

	mu      sync.Mutex
	cancels []func()
}

func NewSession(docs DocumentStore, paths Paths, state *State, coordinator *Coordinator, opts ...Option) *Session {
	o := buildOptions(opts)
	return &Session{
		docs:        docs,
		paths:       paths,
		state:       state,
		coordinator: coordinator,
		logger:      o.logger.With().Str("component", "session").Logger(),
	}
}

// Start opens the subscriptions. Each delivers its initial snapshot
// asynchronously.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancels = append(s.cancels,
		s.docs.Subscribe(s.paths.Tasks(), s.onTasks),
		s.docs.Subscribe(s.paths.Projects(), s.onProjects),
		s.docs.Subscribe(s.paths.Inbox(), s.onInbox),
		s.docs.Subscribe(s.paths.Reminders(), s.onReminders),
		s.docs.Subscribe(s.paths.Settings(), s.onSettings),
	)
}

// Stop cancels every subscription.
func (s *Session) Stop() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *Session) failed(collection string, snap store.Snapshot) bool {
	if snap.Err == nil {
		return false
	}
	s.logger.Error().Err(snap.Err).Str("collection", collection).Msg("subscription read failed")
	return true
}

func (s *Session) onTasks(snap store.Snapshot) {
	if s.failed("tasks", snap) {
		return
	}
	s.state.ReplaceTasks(DecodeDocs[Task](s.logger, snap.Docs))
}

func (s *Session) onProjects(snap store.Snapshot) {
	if s.failed("projects", snap) {
		return
	}
	projects := DecodeDocs[Project](s.logger, snap.Docs)
	ctx := context.Background()

	// A seed write triggers a fresh snapshot that carries the starter
	// projects, so the empty one is not published.
	seeded, _ := s.coordinator.SeedIfEmpty(ctx, projects, s.state.ProjectCount())
	if seeded {
		return
	}

	s.state.ReplaceProjects(projects)
	if len(projects) > 0 {
		_, _ = s.coordinator.Check(ctx, projects)
	}
}

func (s *Session) onInbox(snap store.Snapshot) {
	if s.failed("inbox", snap) {
		return
	}
	s.state.ReplaceInbox(DecodeDocs[InboxTask](s.logger, snap.Docs))
}

func (s *Session) onReminders(snap store.Snapshot) {
	if s.failed("reminders", snap) {
		return
	}
	s.state.ReplaceReminders(DecodeDocs[Reminder](s.logger, snap.Docs))
}

func (s *Session) onSettings(snap store.Snapshot) {
	if s.failed("settings", snap) {
		return
	}

	prefs := DefaultPreferences()
	var meta ResetMeta
	for _, d := range snap.Docs {
		switch d.ID {
		case PreferencesDocID:
			if err := d.Decode(&prefs); err != nil {
				s.logger.Warn().Err(err).Str("path", d.Path).Msg("bad preferences document")
				prefs = DefaultPreferences()
			}
		case MetaDocID:
			if err := d.Decode(&meta); err != nil {
				s.logger.Warn().Err(err).Str("path", d.Path).Msg("bad meta document")
			}
		case ProfileDocID:
			var p Profile
			if err := d.Decode(&p); err != nil {
				s.logger.Warn().Err(err).Str("path", d.Path).Msg("bad profile document")
				continue
			}
			s.state.SetProfile(p)
		}
	}
	s.state.SetPreferences(prefs)
	s.state.SetMeta(meta)
}

// DecodeDocs decodes each document into T, logging and skipping the ones
// that do not decode.
func DecodeDocs[T any](logger zerolog.Logger, docs []store.Document) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			logger.Warn().Err(err).Str("path", d.Path).Msg("skipping undecodable document")
			continue
		}
		out = append(out, v)
	}
	return out
}
