package reconcile

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
)

// OnChange is a store.Listener. Local saves are queued as pushes, enrich
// when only derived analysis changed on a synced record; local deletes of
// a record known to the server are queued as remote deletes. Other origins
// are ignored.
func (r *Reconciler) OnChange(ctx context.Context, ch store.Change) {
	if ch.Origin != store.OriginLocal {
		return
	}
	switch ch.Kind {
	case store.ChangeUpserted:
		kind := PushInitial
		if ch.Record.HasAnalysis() && enrichOnly(ch.Previous, ch.Record) {
			kind = PushEnrich
		}
		r.enqueue(ctx, job{rec: ch.Record, kind: kind})
	case store.ChangeDeleted:
		if ch.Record.RemoteID != "" {
			r.enqueue(ctx, job{rec: ch.Record, delete: true})
		}
	}
}

// enrichOnly reports whether rec differs from an acknowledged prev only in
// derived fields.
func enrichOnly(prev *models.DiaryRecord, rec models.DiaryRecord) bool {
	return prev != nil && !prev.NeedsPush() && prev.Content.Equal(rec.Content) && prev.EntryDate == rec.EntryDate
}

func (r *Reconciler) enqueue(ctx context.Context, j job) {
	select {
	case r.jobs <- j:
	default:
		// The record stays dirty and goes out with the next sync.
		r.log.Warn(ctx, "push queue full, deferring to next sync", "local_id", j.rec.LocalID)
	}
}

// Start runs the push worker until Stop or until ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.worker(ctx)
}

// Stop cancels the worker and waits for it.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.jobs:
			r.run(ctx, j)
		}
	}
}

func (r *Reconciler) run(ctx context.Context, j job) {
	if j.delete {
		err := r.remote.DeleteRecord(ctx, j.rec.RemoteID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			r.log.Warn(ctx, "remote delete failed", "remote_id", j.rec.RemoteID, "error", err)
		}
		return
	}
	// Push logs its own failures; the record stays dirty for the next sync.
	_ = r.Push(ctx, j.rec, j.kind)
}
