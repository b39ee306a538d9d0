package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/store"
)

// Updater applies partial field updates to a document.
type Updater interface {
	Update(ctx context.Context, path string, f store.Fields) error
}

// DocumentStore is the store surface the tracker consumes.
type DocumentStore interface {
	Updater
	Get(ctx context.Context, path string, dst any) error
	Set(ctx context.Context, path string, v any, opts ...store.SetOption) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, collection string) ([]store.Document, error)
	Commit(ctx context.Context, b *store.Batch) error
	Subscribe(collection string, fn func(store.Snapshot)) (cancel func())
}

// Recorder receives tracker metrics. *metrics.Metrics implements it.
type Recorder interface {
	RecordCommit(target string, err error)
	AddTracked(secs int64)
	RecordReset(periods []string, err error)
	SetTimerActive(active bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommit(string, error)  {}
func (nopRecorder) AddTracked(int64)            {}
func (nopRecorder) RecordReset([]string, error) {}
func (nopRecorder) SetTimerActive(bool)         {}

type options struct {
	clock         clock.Clock
	logger        zerolog.Logger
	metrics       Recorder
	inboxDelay    time.Duration
	reminderDelay time.Duration
}

// Option configures the engine, coordinator, service and session.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithClearDelays sets how long completed inbox items and reminders stay
// visible before they are deleted.
func WithClearDelays(inbox, reminders time.Duration) Option {
	return func(o *options) {
		o.inboxDelay = inbox
		o.reminderDelay = reminders
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:         clock.RealClock{},
		logger:        zerolog.Nop(),
		metrics:       nopRecorder{},
		inboxDelay:    2 * time.Second,
		reminderDelay: time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
