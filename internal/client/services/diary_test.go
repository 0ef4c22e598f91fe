package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeStore struct {
	calls   *[]string
	recs    map[string]models.DiaryRecord
	upErr   error
	deleted []string
}

func (f *fakeStore) Upsert(ctx context.Context, rec models.DiaryRecord) (models.DiaryRecord, error) {
	*f.calls = append(*f.calls, "upsert")
	if f.upErr != nil {
		return models.DiaryRecord{}, f.upErr
	}
	if rec.LocalID == "" {
		rec.LocalID = "L-" + rec.EntryDate.String()
	}
	f.recs[rec.LocalID] = rec
	return rec, nil
}

func (f *fakeStore) Delete(ctx context.Context, logicalID string) error {
	if _, ok := f.recs[logicalID]; !ok {
		return common.ErrNotFound
	}
	delete(f.recs, logicalID)
	f.deleted = append(f.deleted, logicalID)
	return nil
}

func (f *fakeStore) List() []models.DiaryRecord {
	out := make([]models.DiaryRecord, 0, len(f.recs))
	for _, r := range f.recs {
		out = append(out, r)
	}
	return out
}

func (f *fakeStore) Get(id string) (models.DiaryRecord, bool) {
	r, ok := f.recs[id]
	return r, ok
}

type fakeStager struct {
	calls    *[]string
	staged   *models.Draft
	stageErr error
	clearErr error
}

func (f *fakeStager) Stage(ctx context.Context, d models.Draft) error {
	*f.calls = append(*f.calls, "stage")
	if f.stageErr != nil {
		return f.stageErr
	}
	f.staged = &d
	return nil
}

func (f *fakeStager) Clear(ctx context.Context) error {
	*f.calls = append(*f.calls, "clear")
	if f.clearErr != nil {
		return f.clearErr
	}
	f.staged = nil
	return nil
}

func (f *fakeStager) RecoverPending(ctx context.Context) (*models.Draft, error) {
	return f.staged, nil
}

type fakeQueue struct {
	calls  *[]string
	accept bool
	busy   bool
	got    []string
}

func (f *fakeQueue) TryEnqueue(ctx context.Context, rec models.DiaryRecord) bool {
	*f.calls = append(*f.calls, "enqueue")
	f.got = append(f.got, rec.LocalID)
	return f.accept
}

func (f *fakeQueue) Busy() bool { return f.busy }

type fakeSyncer struct {
	stats models.MergeStats
	err   error
	n     int
}

func (f *fakeSyncer) Sync(ctx context.Context) (models.MergeStats, error) {
	f.n++
	return f.stats, f.err
}

type harness struct {
	calls  []string
	store  *fakeStore
	stager *fakeStager
	queue  *fakeQueue
	syncer *fakeSyncer
	svc    DiaryService
}

func newHarness() *harness {
	h := &harness{}
	h.store = &fakeStore{calls: &h.calls, recs: map[string]models.DiaryRecord{}}
	h.stager = &fakeStager{calls: &h.calls}
	h.queue = &fakeQueue{calls: &h.calls, accept: true}
	h.syncer = &fakeSyncer{}
	h.svc = NewDiaryService(h.store, h.stager, h.queue, h.syncer, logging.NewNop())
	return h
}

func draft(date string, analyze bool) models.Draft {
	return models.Draft{
		EntryDate: models.Date(date),
		Content:   models.Content{Event: "walk", Mood: 3},
		Analyze:   analyze,
	}
}

// ---- tests ----

func TestSave_WithoutAnalysisClearsStaging(t *testing.T) {
	h := newHarness()

	res, err := h.svc.Save(context.Background(), draft("2024-05-01", false))
	require.NoError(t, err)
	require.Equal(t, []string{"stage", "upsert", "clear"}, h.calls)
	require.False(t, res.AnalysisRequested)
	require.False(t, res.AnalysisAccepted)
	require.Equal(t, "walk", res.Record.Content.Event)
	require.Nil(t, h.stager.staged)
}

func TestSave_AcceptedAnalysisClearsStaging(t *testing.T) {
	h := newHarness()

	res, err := h.svc.Save(context.Background(), draft("2024-05-01", true))
	require.NoError(t, err)
	require.Equal(t, []string{"stage", "upsert", "enqueue", "clear"}, h.calls)
	require.True(t, res.AnalysisRequested)
	require.True(t, res.AnalysisAccepted)
	require.Equal(t, []string{res.Record.LocalID}, h.queue.got)
}

func TestSave_DeclinedAnalysisKeepsStagingUntilAcknowledged(t *testing.T) {
	h := newHarness()
	h.queue.accept = false
	ctx := context.Background()

	res, err := h.svc.Save(ctx, draft("2024-05-01", true))
	require.NoError(t, err)
	require.True(t, res.AnalysisRequested)
	require.False(t, res.AnalysisAccepted)
	require.Equal(t, []string{"stage", "upsert", "enqueue"}, h.calls)

	d, err := h.svc.RecoverDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Equal(t, models.Date("2024-05-01"), d.EntryDate)

	require.NoError(t, h.svc.AcknowledgeDeclined(ctx))
	d, err = h.svc.RecoverDraft(ctx)
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestSave_UpsertFailureKeepsStaging(t *testing.T) {
	h := newHarness()
	h.store.upErr = common.ErrDateConflict

	_, err := h.svc.Save(context.Background(), draft("2024-05-01", true))
	require.ErrorIs(t, err, common.ErrDateConflict)
	require.Equal(t, []string{"stage", "upsert"}, h.calls)
	require.NotNil(t, h.stager.staged)
}

func TestSave_StageFailureStopsPipeline(t *testing.T) {
	h := newHarness()
	boom := errors.New("disk full")
	h.stager.stageErr = boom

	_, err := h.svc.Save(context.Background(), draft("2024-05-01", false))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"stage"}, h.calls)
	require.Empty(t, h.store.recs)
}

func TestSave_InvalidDraftTouchesNothing(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Save(context.Background(), draft("2024-13-40", false))
	require.ErrorIs(t, err, common.ErrInvalidDate)

	d := draft("2024-05-01", false)
	d.Content.Mood = 9
	_, err = h.svc.Save(context.Background(), d)
	require.ErrorIs(t, err, common.ErrInvalidMood)
	require.Empty(t, h.calls)
}

func TestSave_ClearFailureStillSucceeds(t *testing.T) {
	h := newHarness()
	h.stager.clearErr = errors.New("locked")

	res, err := h.svc.Save(context.Background(), draft("2024-05-01", false))
	require.NoError(t, err)
	require.NotEmpty(t, res.Record.LocalID)
}

func TestAnalyze_ExistingAndMissingRecord(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	res, err := h.svc.Save(ctx, draft("2024-05-01", false))
	require.NoError(t, err)

	ok, err := h.svc.Analyze(ctx, res.Record.LocalID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.svc.Analyze(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)

	h.queue.busy = true
	require.True(t, h.svc.AnalysisBusy())
}

func TestGetListDelete(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	res, err := h.svc.Save(ctx, draft("2024-05-01", false))
	require.NoError(t, err)

	got, err := h.svc.Get(ctx, res.Record.LocalID)
	require.NoError(t, err)
	require.Equal(t, res.Record.LocalID, got.LocalID)
	require.Len(t, h.svc.List(ctx), 1)

	require.NoError(t, h.svc.Delete(ctx, res.Record.LocalID))
	_, err = h.svc.Get(ctx, res.Record.LocalID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, h.svc.Delete(ctx, res.Record.LocalID), common.ErrNotFound)
}

func TestSync_PassesThroughAndWraps(t *testing.T) {
	h := newHarness()
	h.syncer.stats = models.MergeStats{Created: 2}

	stats, err := h.svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Created)

	h.syncer.err = common.ErrUnavailable
	_, err = h.svc.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
	require.Equal(t, 2, h.syncer.n)
}

func TestSync_NoRemote(t *testing.T) {
	h := newHarness()
	svc := NewDiaryService(h.store, h.stager, h.queue, nil, logging.NewNop())

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
}
