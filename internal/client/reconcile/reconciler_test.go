package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/client"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fakeRemote struct {
	mu sync.Mutex

	items   []client.RemoteItem
	listErr error
	// listGate, when set, blocks ListRecords until closed.
	listGate  chan struct{}
	listCalls int32

	byDate  map[models.Date]string
	findErr error

	nextID    int
	createErr error
	created   []models.DiaryRecord

	updateErr error
	updated   []string
	onUpdate  func()

	enrichErr error
	enriched  []string

	deleted []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{byDate: map[models.Date]string{}}
}

func (f *fakeRemote) ListRecords(ctx context.Context) ([]client.RemoteItem, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.RemoteItem(nil), f.items...), f.listErr
}

func (f *fakeRemote) CreateRecord(ctx context.Context, rec models.DiaryRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("srv-%d", f.nextID)
	f.created = append(f.created, rec)
	f.byDate[rec.EntryDate] = id
	return id, nil
}

func (f *fakeRemote) UpdateRecord(ctx context.Context, remoteID string, rec models.DiaryRecord) error {
	f.mu.Lock()
	hook := f.onUpdate
	f.updated = append(f.updated, remoteID)
	err := f.updateErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeRemote) EnrichRecord(ctx context.Context, remoteID string, derived models.Derived) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enriched = append(f.enriched, remoteID)
	return f.enrichErr
}

func (f *fakeRemote) FindRecordByDate(ctx context.Context, date models.Date) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return "", false, f.findErr
	}
	id, ok := f.byDate[date]
	return id, ok, nil
}

func (f *fakeRemote) DeleteRecord(ctx context.Context, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, remoteID)
	return nil
}

func (f *fakeRemote) snapshot() (created, updated, enriched, deleted int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created), len(f.updated), len(f.enriched), len(f.deleted)
}

type fixture struct {
	store  *store.Store
	remote *fakeRemote
	meta   metadata.Repository
	rec    *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := store.New(dbx.NewRunner(db), logging.NewNop())
	st.Load(context.Background())
	remote := newFakeRemote()
	meta := metadata.NewSQLiteRepository(db)
	return &fixture{store: st, remote: remote, meta: meta, rec: New(st, remote, meta, logging.NewNop())}
}

func (f *fixture) save(t *testing.T, date models.Date, c models.Content) models.DiaryRecord {
	t.Helper()
	rec, err := f.store.Upsert(context.Background(), models.DiaryRecord{EntryDate: date, Content: c})
	require.NoError(t, err)
	return rec
}

// markSynced binds remoteID as a successful push would.
func (f *fixture) markSynced(t *testing.T, localID, remoteID string) {
	t.Helper()
	require.NoError(t, f.store.Apply(context.Background(), store.OriginSystem, func(b *store.Batch) error {
		r, ok := b.Get(localID)
		require.True(t, ok)
		r.RemoteID = remoteID
		r.SyncState = models.SyncStateSynced
		r.SyncedOnce = true
		_, err := b.Put(r)
		return err
	}))
}

func TestExampleScenario_MergeKeepsLocalTextAndBindsRemoteID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, "2024-05-01", models.Content{Mood: 2, Event: "argument at work"})

	list := f.store.List()
	require.Len(t, list, 1)
	require.Equal(t, models.SyncStateLocal, list[0].SyncState)

	stats, err := f.rec.Reconcile(ctx, []client.RemoteItem{{ID: "r1", EntryDate: "2024-05-01"}})
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Updated: 1}, stats)

	got, ok := f.store.FindByDate("2024-05-01")
	require.True(t, ok)
	assert.Equal(t, "r1", got.RemoteID)
	assert.Equal(t, "argument at work", got.Event)
	assert.Equal(t, 2, got.Mood)
	assert.Equal(t, models.SyncStateSynced, got.SyncState)
	assert.Len(t, f.store.List(), 1)
}

func TestReconcile_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, "2024-05-01", models.Content{Event: "mine"})
	items := []client.RemoteItem{
		{ID: "r1", EntryDate: "2024-05-01", Content: models.Content{Event: "theirs", Mood: 4}, Derived: models.Derived{Analysis: "a"}},
		{ID: "r2", EntryDate: "2024-05-02T10:00:00Z", Content: models.Content{Event: "other"}},
	}

	first, err := f.rec.Reconcile(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Created: 1, Updated: 1}, first)
	once := f.store.List()

	second, err := f.rec.Reconcile(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Unchanged: 2}, second)

	if diff := cmp.Diff(once, f.store.List()); diff != "" {
		t.Fatalf("second reconcile changed the store (-once +twice):\n%s", diff)
	}
}

func TestReconcile_LocalWinsForNarrative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, "2024-05-01", models.Content{Event: "local event", Emotion: "local emotion", Mood: 3})

	_, err := f.rec.Reconcile(ctx, []client.RemoteItem{{
		ID:        "r1",
		EntryDate: "2024-05-01",
		Content: models.Content{
			Event: "remote event", Emotion: "remote emotion", Meaning: "remote meaning",
			Mood: 5, Symptoms: []string{"headache"},
		},
		Derived: models.Derived{Prediction: "calm", Confidence: 0.9, Analysis: "remote analysis", Advice: "sleep"},
	}})
	require.NoError(t, err)

	got, _ := f.store.FindByDate("2024-05-01")
	assert.Equal(t, "local event", got.Event)
	assert.Equal(t, "local emotion", got.Emotion)
	assert.Equal(t, 3, got.Mood, "local mood is kept")
	assert.Equal(t, "remote meaning", got.Meaning, "empty local fields are filled")
	assert.Equal(t, []string{"headache"}, got.Symptoms)
	assert.Equal(t, "calm", got.Prediction)
	assert.Equal(t, "remote analysis", got.Analysis)
	assert.Equal(t, 0.9, got.Confidence)
}

// setPrediction writes a prediction without touching UpdatedAt, the way
// the analysis queue marks and clears its placeholder.
func (f *fixture) setPrediction(t *testing.T, localID, prediction string) {
	t.Helper()
	require.NoError(t, f.store.Apply(context.Background(), store.OriginSystem, func(b *store.Batch) error {
		r, ok := b.Get(localID)
		require.True(t, ok)
		r.Prediction = prediction
		_, err := b.Put(r)
		return err
	}))
}

func TestReconcile_LocalAnalysisNotOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	require.NoError(t, f.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		r, _ := b.Get(rec.LocalID)
		r.Analysis = "local analysis"
		_, err := b.Put(r)
		return err
	}))

	_, err := f.rec.Reconcile(ctx, []client.RemoteItem{{ID: "r1", EntryDate: "2024-05-01", Derived: models.Derived{Analysis: "remote analysis"}}})
	require.NoError(t, err)

	got, _ := f.store.FindByDate("2024-05-01")
	assert.Equal(t, "local analysis", got.Analysis)
}

func TestReconcile_RemoteIDNeverCleared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")

	stats, err := f.rec.Reconcile(ctx, []client.RemoteItem{{ID: "", EntryDate: "2024-05-01"}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	got, _ := f.store.FindByDate("2024-05-01")
	assert.Equal(t, "r1", got.RemoteID)
}

func TestReconcile_KeepsBoundRemoteIDOnServerDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")

	stats, err := f.rec.Reconcile(ctx, []client.RemoteItem{
		{ID: "r2", EntryDate: "2024-05-01", Content: models.Content{Emotion: "from duplicate"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Skipped: 1}, stats)

	got, _ := f.store.FindByDate("2024-05-01")
	assert.Equal(t, "r1", got.RemoteID)
	assert.Empty(t, got.Emotion)
	assert.Len(t, f.store.List(), 1)
}

func TestReconcile_RemotePlaceholderIsNotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")

	_, err := f.rec.Reconcile(ctx, []client.RemoteItem{
		{ID: "r1", EntryDate: "2024-05-01", Derived: models.Derived{Prediction: models.PredictionPending}},
		{ID: "r2", EntryDate: "2024-05-02", Derived: models.Derived{Prediction: models.PredictionPending}},
	})
	require.NoError(t, err)

	merged, _ := f.store.FindByDate("2024-05-01")
	assert.Empty(t, merged.Prediction)
	assert.False(t, merged.AnalysisPending())

	created, ok := f.store.FindByDate("2024-05-02")
	require.True(t, ok)
	assert.Empty(t, created.Prediction)
}

func TestReconcile_RemotePredictionReplacesLocalPlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")
	f.setPrediction(t, rec.LocalID, models.PredictionPending)

	_, err := f.rec.Reconcile(ctx, []client.RemoteItem{
		{ID: "r1", EntryDate: "2024-05-01", Derived: models.Derived{Prediction: "calm"}},
	})
	require.NoError(t, err)

	got, _ := f.store.FindByDate("2024-05-01")
	assert.Equal(t, "calm", got.Prediction)
}

func TestReconcile_SkipsMalformedAndMergesRest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.rec.Reconcile(ctx, []client.RemoteItem{
		{Malformed: true},
		{ID: "r1", EntryDate: "yesterday"},
		{ID: "r2", EntryDate: "2024-05-02", Content: models.Content{Event: "ok", Mood: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Created: 1, Skipped: 2}, stats)

	got, ok := f.store.FindByDate("2024-05-02")
	require.True(t, ok)
	assert.Equal(t, "r2", got.RemoteID)
	assert.Equal(t, 0, got.Mood, "out of range remote mood is dropped")
	assert.Equal(t, models.SyncStateSynced, got.SyncState)
	assert.True(t, got.SyncedOnce)
	assert.NotEmpty(t, got.LocalID)
}

func TestReconcile_MatchesByRemoteIDWhenServerMovedTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")

	stats, err := f.rec.Reconcile(ctx, []client.RemoteItem{{ID: "r1", EntryDate: "2024-05-03"}})
	require.NoError(t, err)
	assert.Equal(t, models.MergeStats{Updated: 1}, stats)

	list := f.store.List()
	require.Len(t, list, 1)
	assert.Equal(t, models.Date("2024-05-03"), list[0].EntryDate)
	assert.Equal(t, rec.LocalID, list[0].LocalID)
}

func TestPush_CreatesNeverSyncedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "new"})
	require.NoError(t, f.rec.Push(ctx, rec, PushInitial))

	got, _ := f.store.Get(rec.LocalID)
	assert.Equal(t, "srv-1", got.RemoteID)
	assert.Equal(t, models.SyncStateSynced, got.SyncState)
	assert.True(t, got.SyncedOnce)
}

func TestPush_LeavesAnalysisPlaceholderOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.setPrediction(t, rec.LocalID, models.PredictionPending)

	require.NoError(t, f.rec.Push(ctx, rec, PushInitial))

	require.Len(t, f.remote.created, 1)
	assert.Empty(t, f.remote.created[0].Prediction)

	got, _ := f.store.Get(rec.LocalID)
	assert.True(t, got.AnalysisPending(), "local placeholder stays until the analysis finishes")
	assert.Equal(t, "srv-1", got.RemoteID)
}

func TestPush_RevertedPlaceholderStaysClearedAfterPull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.setPrediction(t, rec.LocalID, models.PredictionPending)
	require.NoError(t, f.rec.Push(ctx, rec, PushInitial))
	f.setPrediction(t, rec.LocalID, "")

	sent := f.remote.created[0]
	_, err := f.rec.Reconcile(ctx, []client.RemoteItem{
		{ID: "srv-1", EntryDate: sent.EntryDate.String(), Content: sent.Content, Derived: sent.Derived},
	})
	require.NoError(t, err)

	got, _ := f.store.Get(rec.LocalID)
	assert.Empty(t, got.Prediction)
}

func TestPush_UsesExistingRemoteRecordForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.remote.byDate["2024-05-01"] = "srv-existing"

	rec := f.save(t, "2024-05-01", models.Content{Event: "new"})
	require.NoError(t, f.rec.Push(ctx, rec, PushInitial))

	created, updated, _, _ := f.remote.snapshot()
	assert.Zero(t, created)
	assert.Equal(t, 1, updated)
	got, _ := f.store.Get(rec.LocalID)
	assert.Equal(t, "srv-existing", got.RemoteID)
}

func TestPush_TombstoneRemovesSyncedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "gone on server"})
	f.markSynced(t, rec.LocalID, "r1")
	f.remote.updateErr = fmt.Errorf("%w: deleted", common.ErrNotFound)

	cur, _ := f.store.Get(rec.LocalID)
	require.Equal(t, models.SyncStateSynced, cur.SyncState)
	require.NoError(t, f.rec.Push(ctx, cur, PushInitial))

	_, ok := f.store.FindByDate("2024-05-01")
	assert.False(t, ok, "tombstoned record is removed, not recreated")
	created, _, _, _ := f.remote.snapshot()
	assert.Zero(t, created)
}

func TestPush_NotFoundWithoutSyncMarkerRecreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.remote.byDate["2024-05-01"] = "stale"
	f.remote.updateErr = fmt.Errorf("%w: deleted", common.ErrNotFound)

	rec := f.save(t, "2024-05-01", models.Content{Event: "fresh"})
	require.NoError(t, f.rec.Push(ctx, rec, PushInitial))

	got, ok := f.store.Get(rec.LocalID)
	require.True(t, ok)
	assert.Equal(t, "srv-1", got.RemoteID)
	assert.Equal(t, models.SyncStateSynced, got.SyncState)
}

func TestPush_EnrichGoesToEnrichEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")
	rec.Analysis = "deep"
	rec, err := f.store.Upsert(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, f.rec.Push(ctx, rec, PushEnrich))
	_, updated, enriched, _ := f.remote.snapshot()
	assert.Zero(t, updated)
	assert.Equal(t, 1, enriched)
}

func TestPush_EditDuringFlightStaysDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "v1"})
	f.markSynced(t, rec.LocalID, "r1")
	f.remote.onUpdate = func() {
		r, _ := f.store.Get(rec.LocalID)
		r.Event = "v2"
		_, err := f.store.Upsert(ctx, r)
		require.NoError(t, err)
	}

	cur, _ := f.store.Get(rec.LocalID)
	require.NoError(t, f.rec.Push(ctx, cur, PushInitial))

	got, _ := f.store.Get(rec.LocalID)
	assert.Equal(t, "v2", got.Event)
	assert.True(t, got.NeedsPush())
	assert.Equal(t, "r1", got.RemoteID)
}

func TestPush_NetworkFailureKeepsRecordDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.remote.findErr = fmt.Errorf("%w: offline", common.ErrUnavailable)

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	err := f.rec.Push(ctx, rec, PushInitial)
	require.ErrorIs(t, err, common.ErrUnavailable)

	got, _ := f.store.Get(rec.LocalID)
	assert.Equal(t, models.SyncStatePendingCreate, got.SyncState)
	assert.True(t, got.NeedsPush())
}

func TestSync_PushesPullsAndAdvancesCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, "2024-05-01", models.Content{Event: "local"})
	f.remote.items = []client.RemoteItem{{ID: "r9", EntryDate: "2024-04-30", Content: models.Content{Event: "from server"}}}

	before := time.Now()
	stats, err := f.rec.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)

	created, _, _, _ := f.remote.snapshot()
	assert.Equal(t, 1, created)
	for _, r := range f.store.List() {
		assert.Equal(t, models.SyncStateSynced, r.SyncState, r.EntryDate)
	}

	cur, err := f.rec.Cursor(ctx)
	require.NoError(t, err)
	assert.False(t, cur.LastSyncAt.Before(before.Add(-time.Second)))

	// nothing dirty: a second pass pushes nothing
	_, err = f.rec.Sync(ctx)
	require.NoError(t, err)
	created, updated, _, _ := f.remote.snapshot()
	assert.Equal(t, 1, created)
	assert.Zero(t, updated)
}

func TestSync_NetworkFailureLeavesStoreAndCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.save(t, "2024-05-01", models.Content{Event: "local"})
	before := f.store.List()
	f.remote.listErr = fmt.Errorf("%w: offline", common.ErrUnavailable)
	f.remote.createErr = fmt.Errorf("%w: offline", common.ErrUnavailable)

	_, err := f.rec.Sync(ctx)
	require.ErrorIs(t, err, common.ErrUnavailable)

	after := f.store.List()
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Event, after[0].Event)
	assert.True(t, after[0].NeedsPush())

	cur, err := f.rec.Cursor(ctx)
	require.NoError(t, err)
	assert.True(t, cur.LastSyncAt.IsZero())
}

func TestSync_ConcurrentCallsCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.remote.listGate = make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rec.Sync(ctx)
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.remote.listCalls) >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.remote.listGate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.remote.listCalls))
}

func TestDispatcher_PushesLocalSavesAndDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Subscribe(f.rec.OnChange)
	f.rec.Start(ctx)
	t.Cleanup(f.rec.Stop)

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	require.Eventually(t, func() bool {
		got, ok := f.store.Get(rec.LocalID)
		return ok && got.SyncState == models.SyncStateSynced
	}, 2*time.Second, 10*time.Millisecond)

	got, _ := f.store.Get(rec.LocalID)
	require.NoError(t, f.store.Delete(ctx, got.LogicalID()))
	require.Eventually(t, func() bool {
		_, _, _, deleted := f.remote.snapshot()
		return deleted == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcher_EnrichOnlyWhenContentUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.save(t, "2024-05-01", models.Content{Event: "e"})
	f.markSynced(t, rec.LocalID, "r1")
	require.NoError(t, f.store.Apply(ctx, store.OriginSystem, func(b *store.Batch) error {
		r, _ := b.Get(rec.LocalID)
		r.Analysis = "first"
		_, err := b.Put(r)
		return err
	}))

	f.store.Subscribe(f.rec.OnChange)
	f.rec.Start(ctx)
	t.Cleanup(f.rec.Stop)

	synced := func() bool {
		got, ok := f.store.Get(rec.LocalID)
		return ok && got.SyncState == models.SyncStateSynced
	}

	// A content edit of an analyzed record is a full update.
	cur, _ := f.store.Get(rec.LocalID)
	edit := models.DraftFrom(cur)
	edit.Content.Event = "edited"
	_, err := f.store.Upsert(ctx, edit.Record())
	require.NoError(t, err)
	require.Eventually(t, synced, 2*time.Second, 10*time.Millisecond)

	_, updated, enriched, _ := f.remote.snapshot()
	assert.Equal(t, 1, updated)
	assert.Zero(t, enriched)

	// A new analysis result on the synced record is an enrich.
	cur, _ = f.store.Get(rec.LocalID)
	cur.Analysis = "second"
	_, err = f.store.Upsert(ctx, cur)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, _, enriched, _ := f.remote.snapshot()
		return enriched == 1 && synced()
	}, 2*time.Second, 10*time.Millisecond)

	_, updated, _, _ = f.remote.snapshot()
	assert.Equal(t, 1, updated)
}

func TestDispatcher_IgnoresNonLocalOrigins(t *testing.T) {
	f := newFixture(t)
	f.rec.OnChange(context.Background(), store.Change{Kind: store.ChangeMerged, Origin: store.OriginRemote})
	f.rec.OnChange(context.Background(), store.Change{Kind: store.ChangeUpserted, Origin: store.OriginSystem})
	assert.Len(t, f.rec.jobs, 0)

	f.rec.OnChange(context.Background(), store.Change{Kind: store.ChangeDeleted, Origin: store.OriginLocal, Record: models.DiaryRecord{LocalID: "l"}})
	assert.Len(t, f.rec.jobs, 0, "deleting a never-synced record needs no remote call")
}
