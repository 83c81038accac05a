// Package audit is the append-only trail of record mutations. Every write in
// the worker, income, and expense verticals produces exactly one entry here.
//
// Recording is best-effort on the infrastructure side: a store failure is
// logged and counted but never propagated, so a lost trail entry cannot fail
// the business mutation it describes. Validation failures are the exception
// and surface synchronously — a malformed entry is a programming error at the
// call site, not an infrastructure fault.
package audit

import (
	"context"
	"log/slog"
	"sync"

	id "opsledger/pkg/domain"
	"opsledger/pkg/requestcontext"

	"opsledger/internal/audit/metrics"
)

// Sink receives a copy of each recorded entry, e.g. a Kafka mirror.
// Publishing is best-effort; errors are counted and dropped.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
}

// Recorder validates and appends audit entries.
type Recorder struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	buffer chan Entry
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSink attaches a secondary best-effort sink (Kafka mirror).
func WithSink(sink Sink) Option {
	return func(r *Recorder) {
		r.sink = sink
	}
}

// WithAsyncBuffer makes Record hand entries to a background goroutine through
// a buffered channel. When the buffer is full the entry is dropped and
// counted. Close drains whatever is buffered.
func WithAsyncBuffer(size int) Option {
	return func(r *Recorder) {
		if size > 0 {
			r.buffer = make(chan Entry, size)
		}
	}
}

// NewRecorder constructs a Recorder writing to store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.buffer != nil {
		r.wg.Add(1)
		go r.drain()
	}
	return r
}

// Record validates entry and appends it to the trail. Validation errors are
// returned synchronously and nothing is written. Store and sink failures are
// logged, counted, and swallowed: callers must never fail their own mutation
// because the trail write failed.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID.IsNil() {
		entry.ID = id.NewAuditEntryID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = requestcontext.Now(ctx)
	}

	if r.buffer != nil {
		select {
		case r.buffer <- entry:
		default:
			metrics.Dropped.Inc()
			r.logger.WarnContext(ctx, "audit buffer full, entry dropped",
				"action", string(entry.Action),
				"record_id", entry.RecordID,
			)
		}
		return nil
	}

	r.append(ctx, entry)
	return nil
}

// List reads the trail through the underlying store.
func (r *Recorder) List(ctx context.Context, q Query) ([]Entry, error) {
	return r.store.List(ctx, q)
}

// Close stops the async worker after draining buffered entries. Safe to call
// in sync mode and safe to call twice.
func (r *Recorder) Close() {
	r.once.Do(func() {
		if r.buffer != nil {
			close(r.buffer)
			r.wg.Wait()
		}
	})
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	// Buffered entries outlive the request that produced them.
	ctx := context.Background()
	for entry := range r.buffer {
		r.append(ctx, entry)
	}
}

func (r *Recorder) append(ctx context.Context, entry Entry) {
	if err := r.store.Append(ctx, entry); err != nil {
		metrics.AppendFailures.Inc()
		r.logger.ErrorContext(ctx, "audit append failed",
			"error", err,
			"action", string(entry.Action),
			"record_type", string(entry.RecordType),
			"record_id", entry.RecordID,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		metrics.EntriesRecorded.WithLabelValues(string(entry.Action)).Inc()
	}

	if r.sink != nil {
		if err := r.sink.Publish(ctx, entry); err != nil {
			metrics.SinkFailures.Inc()
			r.logger.WarnContext(ctx, "audit mirror publish failed",
				"error", err,
				"action", string(entry.Action),
			)
		}
	}
}
