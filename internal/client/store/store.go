package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/identity"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/records"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

// RepoFactory builds a records repository over a transactional handle.
type RepoFactory func(tx dbx.DBTX) records.Repository

func defaultRepo(tx dbx.DBTX) records.Repository {
	return records.NewSQLiteRepository(tx)
}

type Store struct {
	mu      sync.Mutex
	records []models.DiaryRecord

	runner  dbx.Runner
	newRepo RepoFactory
	log     logging.Logger
	now     func() time.Time

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

type Option func(*Store)

// WithRepoFactory overrides how repositories are built inside transactions.
func WithRepoFactory(f RepoFactory) Option {
	return func(s *Store) { s.newRepo = f }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(runner dbx.Runner, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		runner:    runner,
		newRepo:   defaultRepo,
		log:       log.With("component", "store"),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the mirror with the persisted records. A failing query
// leaves the store empty; undecodable rows are skipped. Both are logged.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		loaded  []models.DiaryRecord
		corrupt []string
	)
	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		loaded, corrupt, err = s.newRepo(tx).GetAll(ctx)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "failed to load records, starting empty", "error", err)
		s.records = nil
		return
	}
	for _, id := range corrupt {
		s.log.Warn(ctx, "skipping undecodable record", "local_id", id)
	}

	sortRecords(loaded)
	s.records = loaded
	s.log.Debug(ctx, "records loaded", "count", len(loaded), "skipped", len(corrupt))
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) notify(ctx context.Context, ch Change) {
	s.lmu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.RUnlock()

	for _, l := range ls {
		l(ctx, ch)
	}
}

// List returns a copy of all records, newest CreatedAt first.
func (s *Store) List() []models.DiaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records)
}

// Get looks a record up by logical, local or remote id.
func (s *Store) Get(id string) (models.DiaryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := identity.ByLogicalID(s.records, id)
	if i < 0 {
		return models.DiaryRecord{}, false
	}
	return s.records[i].Clone(), true
}

func (s *Store) FindByDate(date models.Date) (models.DiaryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := identity.ByDate(s.records, date)
	if i < 0 {
		return models.DiaryRecord{}, false
	}
	return s.records[i].Clone(), true
}

// Upsert saves a user edit. The record replaces the one it resolves to
// (RemoteID, then LocalID, then EntryDate) keeping that record's LocalID,
// CreatedAt and bound RemoteID, and its derived fields when rec has none;
// otherwise it is inserted with a fresh LocalID. The saved record is left in SyncStateLocal and returned.
func (s *Store) Upsert(ctx context.Context, rec models.DiaryRecord) (models.DiaryRecord, error) {
	if err := validate(rec); err != nil {
		return models.DiaryRecord{}, err
	}

	s.mu.Lock()

	rec = rec.Clone()
	now := s.now().UTC()

	idx := identity.Resolve(s.records, rec)
	if d := identity.ByDate(s.records, rec.EntryDate); d >= 0 && idx >= 0 && d != idx {
		s.mu.Unlock()
		return models.DiaryRecord{}, fmt.Errorf("%w: %s", common.ErrDateConflict, rec.EntryDate)
	}

	var previous *models.DiaryRecord
	if idx >= 0 {
		existing := s.records[idx].Clone()
		previous = &existing
		rec.LocalID = existing.LocalID
		rec.CreatedAt = existing.CreatedAt
		rec.RemoteID = identity.Bind(existing, rec.RemoteID).RemoteID
		rec.SyncedOnce = existing.SyncedOnce || rec.SyncedOnce
		if rec.Derived == (models.Derived{}) {
			rec.Derived = existing.Derived
		}
	} else {
		rec.LocalID = identity.NewLocalID()
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
	}
	rec.UpdatedAt = now
	rec.SyncState = models.SyncStateLocal

	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.newRepo(tx).Upsert(ctx, rec)
	})
	if err != nil {
		s.mu.Unlock()
		return models.DiaryRecord{}, fmt.Errorf("failed to save record for %s: %w", rec.EntryDate, err)
	}

	if idx >= 0 {
		s.records[idx] = rec
	} else {
		s.records = append(s.records, rec)
	}
	sortRecords(s.records)
	s.mu.Unlock()

	s.notify(ctx, Change{Kind: ChangeUpserted, Origin: OriginLocal, Record: rec.Clone(), Previous: previous})
	return rec.Clone(), nil
}

// Delete removes the record with the given logical id.
func (s *Store) Delete(ctx context.Context, logicalID string) error {
	s.mu.Lock()

	idx := identity.ByLogicalID(s.records, logicalID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: record %s", common.ErrNotFound, logicalID)
	}
	rec := s.records[idx]

	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.newRepo(tx).DeleteByLocalID(ctx, rec.LocalID)
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to delete record %s: %w", logicalID, err)
	}

	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	s.mu.Unlock()

	s.notify(ctx, Change{Kind: ChangeDeleted, Origin: OriginLocal, Record: rec.Clone()})
	return nil
}

func validate(rec models.DiaryRecord) error {
	if !rec.EntryDate.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidDate, rec.EntryDate)
	}
	if rec.Mood != 0 && (rec.Mood < models.MinMood || rec.Mood > models.MaxMood) {
		return fmt.Errorf("%w: %d", common.ErrInvalidMood, rec.Mood)
	}
	return nil
}

func sortRecords(rs []models.DiaryRecord) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.After(rs[j].CreatedAt)
		}
		return rs[i].LocalID < rs[j].LocalID
	})
}

func cloneAll(rs []models.DiaryRecord) []models.DiaryRecord {
	out := make([]models.DiaryRecord, len(rs))
	for i := range rs {
		out[i] = rs[i].Clone()
	}
	return out
}
