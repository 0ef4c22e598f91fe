// Package reconcile merges the remote record list into the local store and
// pushes local changes to the remote service.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/client"
	"github.com/dmitrijs2005/gophdiary/internal/client/identity"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Remote is the part of the diary service the reconciler uses.
type Remote interface {
	ListRecords(ctx context.Context) ([]client.RemoteItem, error)
	CreateRecord(ctx context.Context, rec models.DiaryRecord) (string, error)
	UpdateRecord(ctx context.Context, remoteID string, rec models.DiaryRecord) error
	EnrichRecord(ctx context.Context, remoteID string, derived models.Derived) error
	FindRecordByDate(ctx context.Context, date models.Date) (string, bool, error)
	DeleteRecord(ctx context.Context, remoteID string) error
}

// PushKind selects the remote endpoint a push goes to.
type PushKind int

const (
	// PushInitial sends user content through create or update.
	PushInitial PushKind = iota
	// PushEnrich sends derived analysis fields of an already saved record.
	PushEnrich
)

func (k PushKind) String() string {
	if k == PushEnrich {
		return "enrich"
	}
	return "initial"
}

const queueSize = 64

type job struct {
	rec    models.DiaryRecord
	kind   PushKind
	delete bool
}

type Reconciler struct {
	store  *store.Store
	remote Remote
	meta   metadata.Repository
	log    logging.Logger
	now    func() time.Time

	// pushMu serializes pushes from the worker and from Sync so one record
	// is never created twice.
	pushMu sync.Mutex
	sf     singleflight.Group

	jobs   chan job
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(st *store.Store, remote Remote, meta metadata.Repository, log logging.Logger) *Reconciler {
	return &Reconciler{
		store:  st,
		remote: remote,
		meta:   meta,
		log:    log.With("component", "reconciler"),
		now:    time.Now,
		jobs:   make(chan job, queueSize),
	}
}

// Reconcile merges a full remote list into the store in one batch. Items
// are matched to local records by day first and by remote id second.
// Malformed items, and items for a day already bound to another remote
// id, are skipped and counted.
func (r *Reconciler) Reconcile(ctx context.Context, items []client.RemoteItem) (models.MergeStats, error) {
	var stats models.MergeStats

	err := r.store.Apply(ctx, store.OriginRemote, func(b *store.Batch) error {
		stats = models.MergeStats{}
		for _, it := range items {
			if it.Malformed || it.ID == "" {
				stats.Skipped++
				r.log.Warn(ctx, "skipping malformed remote item", "id", it.ID)
				continue
			}
			date, err := models.ParseDate(it.EntryDate)
			if err != nil {
				stats.Skipped++
				r.log.Warn(ctx, "skipping remote item with bad date", "id", it.ID, "entry_date", it.EntryDate)
				continue
			}

			local, found := b.FindByDate(date)
			if found && local.RemoteID != "" && local.RemoteID != it.ID {
				stats.Skipped++
				r.log.Warn(ctx, "skipping remote duplicate for a bound day",
					"id", it.ID, "remote_id", local.RemoteID, "entry_date", date)
				continue
			}
			moved := false
			if !found {
				local, found = b.Get(it.ID)
				if found && local.RemoteID != it.ID {
					found = false
				}
				if found {
					// The server moved the entry to another day.
					local.EntryDate = date
					moved = true
				}
			}

			if found {
				merged, changed := Merge(local, it)
				if !changed && !moved {
					stats.Unchanged++
					continue
				}
				if _, err := b.Put(merged); err != nil {
					stats.Skipped++
					r.log.Warn(ctx, "skipping remote item", "id", it.ID, "error", err)
					continue
				}
				stats.Updated++
				continue
			}

			if _, err := b.Put(FromRemote(it, date, r.now())); err != nil {
				stats.Skipped++
				r.log.Warn(ctx, "skipping remote item", "id", it.ID, "error", err)
				continue
			}
			stats.Created++
		}
		return nil
	})
	if err != nil {
		return models.MergeStats{}, fmt.Errorf("failed to persist merge: %w", err)
	}

	r.log.Info(ctx, "reconcile finished",
		"created", stats.Created, "updated", stats.Updated,
		"unchanged", stats.Unchanged, "skipped", stats.Skipped)
	return stats, nil
}

// Pull fetches the remote list and reconciles it. A network failure leaves
// the store as it was.
func (r *Reconciler) Pull(ctx context.Context) (models.MergeStats, error) {
	items, err := r.remote.ListRecords(ctx)
	if err != nil {
		r.log.Warn(ctx, "pull failed", "error", err)
		return models.MergeStats{}, fmt.Errorf("failed to list remote records: %w", err)
	}
	return r.Reconcile(ctx, items)
}

// Push sends the current version of rec to the server and binds the
// returned identity.
//
// A not-found answer for a record that was synced before means it was
// deleted remotely; the record is then removed locally instead of being
// recreated. A record that never synced is created.
func (r *Reconciler) Push(ctx context.Context, rec models.DiaryRecord, kind PushKind) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()

	cur, ok := r.store.Get(rec.LocalID)
	if !ok {
		return nil
	}
	cur.Derived = cur.Derived.Settled()

	pending := models.SyncStatePendingCreate
	if cur.RemoteID != "" {
		pending = models.SyncStatePendingUpdate
	}
	if err := r.setPending(ctx, cur, pending); err != nil {
		return err
	}

	remoteID, err := r.send(ctx, cur, kind)
	if errors.Is(err, common.ErrNotFound) {
		if cur.SyncedOnce && cur.RemoteID != "" {
			return r.tombstone(ctx, cur)
		}
		remoteID, err = r.remote.CreateRecord(ctx, cur)
	}
	if err != nil {
		r.log.Warn(ctx, "push failed", "local_id", cur.LocalID, "kind", kind.String(), "error", err)
		return fmt.Errorf("failed to push record %s: %w", cur.LocalID, err)
	}

	return r.acknowledge(ctx, cur, remoteID)
}

func (r *Reconciler) send(ctx context.Context, cur models.DiaryRecord, kind PushKind) (string, error) {
	remoteID := cur.RemoteID
	if remoteID == "" {
		id, found, err := r.remote.FindRecordByDate(ctx, cur.EntryDate)
		if err != nil {
			return "", err
		}
		if !found {
			return r.remote.CreateRecord(ctx, cur)
		}
		remoteID = id
	}

	if kind == PushEnrich {
		return remoteID, r.remote.EnrichRecord(ctx, remoteID, cur.Derived)
	}
	return remoteID, r.remote.UpdateRecord(ctx, remoteID, cur)
}

func (r *Reconciler) setPending(ctx context.Context, cur models.DiaryRecord, state models.SyncState) error {
	return r.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		rec, ok := b.Get(cur.LocalID)
		if !ok || !rec.UpdatedAt.Equal(cur.UpdatedAt) || rec.SyncState == state {
			return nil
		}
		rec.SyncState = state
		_, err := b.Put(rec)
		return err
	})
}

// acknowledge binds remoteID and marks the record synced, unless it was
// edited while the push was in flight.
func (r *Reconciler) acknowledge(ctx context.Context, pushed models.DiaryRecord, remoteID string) error {
	return r.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		rec, ok := b.Get(pushed.LocalID)
		if !ok {
			return nil
		}
		rec = identity.Bind(rec, remoteID)
		rec.SyncedOnce = true
		if rec.UpdatedAt.Equal(pushed.UpdatedAt) {
			rec.SyncState = models.SyncStateSynced
		}
		_, err := b.Put(rec)
		return err
	})
}

func (r *Reconciler) tombstone(ctx context.Context, cur models.DiaryRecord) error {
	r.log.Info(ctx, "record deleted remotely, removing local copy",
		"local_id", cur.LocalID, "remote_id", cur.RemoteID)
	return r.store.Apply(ctx, store.OriginRemote, func(b *store.Batch) error {
		b.Remove(cur.LocalID)
		return nil
	})
}

// Sync pushes every record with unacknowledged changes, then pulls and
// reconciles, then advances the cursor. Concurrent calls share one pass.
func (r *Reconciler) Sync(ctx context.Context) (models.MergeStats, error) {
	v, err, _ := r.sf.Do("sync", func() (any, error) {
		return r.sync(ctx)
	})
	if err != nil {
		return models.MergeStats{}, err
	}
	return v.(models.MergeStats), nil
}

func (r *Reconciler) sync(ctx context.Context) (models.MergeStats, error) {
	cursor, err := r.Cursor(ctx)
	if err != nil {
		return models.MergeStats{}, err
	}

	for _, rec := range r.store.List() {
		if !rec.NeedsPush() && !rec.UpdatedAt.After(cursor.LastSyncAt) {
			continue
		}
		kind := PushInitial
		if rec.HasAnalysis() {
			kind = PushEnrich
		}
		if err := r.Push(ctx, rec, kind); err != nil {
			if errors.Is(err, common.ErrUnavailable) || errors.Is(err, common.ErrUnauthorized) {
				return models.MergeStats{}, err
			}
		}
	}

	stats, err := r.Pull(ctx)
	if err != nil {
		return models.MergeStats{}, err
	}

	if err := metadata.SetTime(ctx, r.meta, metadata.KeyLastSyncAt, r.now()); err != nil {
		return stats, fmt.Errorf("failed to save sync cursor: %w", err)
	}
	return stats, nil
}

// Cursor returns the persisted sync cursor.
func (r *Reconciler) Cursor(ctx context.Context) (models.SyncCursor, error) {
	t, err := metadata.GetTime(ctx, r.meta, metadata.KeyLastSyncAt)
	if err != nil {
		return models.SyncCursor{}, fmt.Errorf("failed to read sync cursor: %w", err)
	}
	return models.SyncCursor{LastSyncAt: t}, nil
}
