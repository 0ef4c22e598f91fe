// Package analysis runs at most one background analysis request at a time
// and writes its result back into the store.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/client"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

const (
	DefaultTimeout    = 2 * time.Minute
	DefaultStaleAfter = 10 * time.Minute
)

// Analyzer produces derived fields for a record's text.
type Analyzer interface {
	Analyze(ctx context.Context, date models.Date, text string) (client.Analysis, error)
}

// Queue is a single-slot admission queue. A request is admitted only when
// the slot is free; there is no waiting line.
type Queue struct {
	store    *store.Store
	analyzer Analyzer
	log      logging.Logger

	timeout    time.Duration
	staleAfter time.Duration
	now        func() time.Time

	mu        sync.Mutex
	ticket    uint64
	busy      bool
	holder    string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Queue)

// WithTimeout bounds a single analyzer call.
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) { q.timeout = d }
}

// WithStaleAfter sets how long a slot may be held before the next request
// revokes it.
func WithStaleAfter(d time.Duration) Option {
	return func(q *Queue) { q.staleAfter = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

func New(st *store.Store, analyzer Analyzer, log logging.Logger, opts ...Option) *Queue {
	q := &Queue{
		store:      st,
		analyzer:   analyzer,
		log:        log.With("component", "analysis"),
		timeout:    DefaultTimeout,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// TryEnqueue admits an analysis request for rec if the slot is free, or if
// the current holder has been running longer than the stale limit. It
// returns false when the request was not admitted; the caller should offer
// a retry. On admission the record shows models.PredictionPending until
// the request finishes.
func (q *Queue) TryEnqueue(ctx context.Context, rec models.DiaryRecord) bool {
	q.mu.Lock()
	if q.busy {
		if q.now().Sub(q.startedAt) < q.staleAfter {
			q.mu.Unlock()
			return false
		}
		q.log.Warn(ctx, "revoking stale analysis slot", "local_id", q.holder, "started_at", q.startedAt)
		q.cancel()
		q.busy = false
	}

	q.ticket++
	t := q.ticket
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	done := make(chan struct{})
	q.busy = true
	q.holder = rec.LocalID
	q.startedAt = q.now()
	q.cancel = cancel
	q.done = done
	q.mu.Unlock()

	if err := q.markPending(ctx, rec.LocalID); err != nil {
		q.log.Warn(ctx, "analysis not started", "local_id", rec.LocalID, "error", err)
		q.release(t)
		cancel()
		close(done)
		return false
	}

	go q.run(runCtx, cancel, done, t, rec.LocalID)
	return true
}

func (q *Queue) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, t uint64, localID string) {
	defer close(done)
	defer cancel()
	defer q.release(t)

	writeCtx := context.WithoutCancel(ctx)

	rec, ok := q.store.Get(localID)
	if !ok {
		return
	}

	res, err := q.analyzer.Analyze(ctx, rec.EntryDate, rec.Content.AnalysisText())
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		q.log.Warn(writeCtx, "analysis failed", "local_id", localID, "error", err)
		if q.current(t) || q.holderID() != localID {
			q.revert(writeCtx, localID)
		}
		return
	}
	if !q.current(t) {
		q.log.Info(writeCtx, "dropping result of revoked analysis", "local_id", localID)
		return
	}

	cur, ok := q.store.Get(localID)
	if !ok {
		return
	}
	cur.Prediction = res.Prediction
	cur.Confidence = res.Confidence
	cur.Analysis = res.Analysis
	cur.Advice = res.Advice
	if _, err := q.store.Upsert(writeCtx, cur); err != nil {
		q.log.Error(writeCtx, "failed to save analysis result", "local_id", localID, "error", err)
		q.revert(writeCtx, localID)
		return
	}
	q.log.Info(writeCtx, "analysis saved", "local_id", localID, "prediction", res.Prediction)
}

func (q *Queue) markPending(ctx context.Context, localID string) error {
	return q.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		rec, ok := b.Get(localID)
		if !ok {
			return fmt.Errorf("%w: record %s", common.ErrNotFound, localID)
		}
		rec.Prediction = models.PredictionPending
		_, err := b.Put(rec)
		return err
	})
}

func (q *Queue) revert(ctx context.Context, localID string) {
	err := q.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		rec, ok := b.Get(localID)
		if !ok || !rec.AnalysisPending() {
			return nil
		}
		rec.Prediction = ""
		_, err := b.Put(rec)
		return err
	})
	if err != nil {
		q.log.Error(ctx, "failed to clear analysis placeholder", "local_id", localID, "error", err)
	}
}

func (q *Queue) release(t uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ticket == t && q.busy {
		q.busy = false
		q.holder = ""
		q.cancel = nil
	}
}

func (q *Queue) current(t uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy && q.ticket == t
}

func (q *Queue) holderID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.holder
}

// Busy reports whether a request holds the slot.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// Cancel aborts the in-flight request, if any. Its placeholder is cleared
// and the slot freed once it winds down.
func (q *Queue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.busy && q.cancel != nil {
		q.cancel()
	}
}

// Wait blocks until the most recently admitted request has finished.
func (q *Queue) Wait() {
	q.mu.Lock()
	done := q.done
	q.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ResetStale clears placeholders left behind by a process that died with
// a request in flight. It is meant for cold start, before any TryEnqueue.
func (q *Queue) ResetStale(ctx context.Context) (int, error) {
	var n int
	err := q.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		n = 0
		for _, rec := range b.Records() {
			if !rec.AnalysisPending() {
				continue
			}
			rec.Prediction = ""
			if _, err := b.Put(rec); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset analysis placeholders: %w", err)
	}
	if n > 0 {
		q.log.Info(ctx, "cleared stale analysis placeholders", "count", n)
	}
	return n, nil
}
