package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/identity"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
)

// Batch is a working copy of the store handed to an Apply callback. Its
// changes become visible only if the whole batch is flushed.
type Batch struct {
	store   *Store
	records []models.DiaryRecord
	put     map[string]models.DiaryRecord
	removed map[string]models.DiaryRecord
}

// Records returns a copy of the working set.
func (b *Batch) Records() []models.DiaryRecord {
	return cloneAll(b.records)
}

func (b *Batch) FindByDate(date models.Date) (models.DiaryRecord, bool) {
	i := identity.ByDate(b.records, date)
	if i < 0 {
		return models.DiaryRecord{}, false
	}
	return b.records[i].Clone(), true
}

// Get looks a record up by logical, local or remote id.
func (b *Batch) Get(id string) (models.DiaryRecord, bool) {
	i := identity.ByLogicalID(b.records, id)
	if i < 0 {
		return models.DiaryRecord{}, false
	}
	return b.records[i].Clone(), true
}

// Put inserts rec or replaces the record with the same LocalID. A missing
// LocalID or CreatedAt is filled in. Taking a date owned by another record
// fails with common.ErrDateConflict.
func (b *Batch) Put(rec models.DiaryRecord) (models.DiaryRecord, error) {
	if err := validate(rec); err != nil {
		return models.DiaryRecord{}, err
	}
	rec = rec.Clone()
	now := b.store.now().UTC()
	if rec.LocalID == "" {
		rec.LocalID = identity.NewLocalID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	idx := -1
	for i := range b.records {
		if b.records[i].LocalID == rec.LocalID {
			idx = i
			break
		}
	}
	if d := identity.ByDate(b.records, rec.EntryDate); d >= 0 && d != idx {
		return models.DiaryRecord{}, fmt.Errorf("%w: %s", common.ErrDateConflict, rec.EntryDate)
	}

	if idx >= 0 {
		b.records[idx] = rec
	} else {
		b.records = append(b.records, rec)
	}
	b.put[rec.LocalID] = rec
	delete(b.removed, rec.LocalID)
	return rec.Clone(), nil
}

// Remove drops the record with the given logical id. It reports whether a
// record was removed.
func (b *Batch) Remove(id string) bool {
	i := identity.ByLogicalID(b.records, id)
	if i < 0 {
		return false
	}
	rec := b.records[i]
	b.records = append(b.records[:i:i], b.records[i+1:]...)
	delete(b.put, rec.LocalID)
	b.removed[rec.LocalID] = rec
	return true
}

// Apply runs fn over a working copy of the store and flushes everything it
// changed in one transaction. If fn or the flush fails nothing changes.
// Listeners receive a single ChangeMerged event with the given origin when
// the batch wrote anything.
func (s *Store) Apply(ctx context.Context, origin Origin, fn func(b *Batch) error) error {
	s.mu.Lock()

	b := &Batch{
		store:   s,
		records: cloneAll(s.records),
		put:     make(map[string]models.DiaryRecord),
		removed: make(map[string]models.DiaryRecord),
	}
	if err := fn(b); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(b.put) == 0 && len(b.removed) == 0 {
		s.mu.Unlock()
		return nil
	}

	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		// Removals first so a freed date can be taken by a put.
		for id := range b.removed {
			if err := repo.DeleteByLocalID(ctx, id); err != nil {
				return err
			}
		}
		for _, rec := range b.put {
			if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to flush batch: %w", err)
	}

	sortRecords(b.records)
	s.records = b.records
	s.mu.Unlock()

	ch := Change{Kind: ChangeMerged, Origin: origin}
	for _, r := range b.put {
		ch.Records = append(ch.Records, r.Clone())
	}
	for _, r := range b.removed {
		ch.Removed = append(ch.Removed, r.Clone())
	}
	sortRecords(ch.Records)
	sortRecords(ch.Removed)
	s.notify(ctx, ch)
	return nil
}
