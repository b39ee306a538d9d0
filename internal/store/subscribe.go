package store

import (
	"context"
	"strings"
	"sync"
)

// Snapshot is the full current content of a collection.
type Snapshot struct {
	Docs []Document
	Err  error
}

type subscription struct {
	collection string
	fn         func(Snapshot)
	signal     chan struct{}
	done       chan struct{}
	once       sync.Once
}

func (sub *subscription) stop() {
	sub.once.Do(func() { close(sub.done) })
}

// poke schedules a redelivery. Pending signals coalesce.
func (sub *subscription) poke() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

// Subscribe calls fn with the collection's documents once immediately and
// again after every committed write that touches the collection. Deliveries
// for one subscription are sequential; rapid writes may collapse into one.
func (s *Store) Subscribe(collection string, fn func(Snapshot)) (cancel func()) {
	sub := &subscription{
		collection: strings.Trim(collection, "/"),
		fn:         fn,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.poke()
	go s.watch(sub)

	return func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.stop()
	}
}

func (s *Store) watch(sub *subscription) {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.signal:
		}

		docs, err := s.List(context.Background(), sub.collection)

		select {
		case <-sub.done:
			return
		default:
		}
		sub.fn(Snapshot{Docs: docs, Err: err})
	}
}

func (s *Store) notify(collections map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if _, ok := collections[sub.collection]; ok {
			sub.poke()
		}
	}
}
