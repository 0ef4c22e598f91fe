// Package services contains application services used by the CLI. They sit
// on top of the store, staging and analysis layers and expose the save
// pipeline and account helpers.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

// RecordStore is the part of store.Store the pipeline needs.
type RecordStore interface {
	Upsert(ctx context.Context, rec models.DiaryRecord) (models.DiaryRecord, error)
	Delete(ctx context.Context, logicalID string) error
	List() []models.DiaryRecord
	Get(id string) (models.DiaryRecord, bool)
}

// Stager is the crash-recovery slot.
type Stager interface {
	Stage(ctx context.Context, d models.Draft) error
	Clear(ctx context.Context) error
	RecoverPending(ctx context.Context) (*models.Draft, error)
}

// Admitter admits at most one analysis request at a time.
type Admitter interface {
	TryEnqueue(ctx context.Context, rec models.DiaryRecord) bool
	Busy() bool
}

// Syncer runs a full push and pull against the remote service.
type Syncer interface {
	Sync(ctx context.Context) (models.MergeStats, error)
}

// SaveResult reports what happened to a saved draft.
type SaveResult struct {
	Record models.DiaryRecord
	// AnalysisRequested is true when the draft asked for analysis.
	AnalysisRequested bool
	// AnalysisAccepted is false when another analysis held the slot. The
	// staged draft is kept until AcknowledgeDeclined is called.
	AnalysisAccepted bool
}

// DiaryService drives the save pipeline and the record operations the CLI
// exposes.
//
// Contract:
//   - Save stages the draft before anything else touches the store, so a
//     crash after Stage leaves a recoverable copy.
//   - The staged copy is cleared once the record is saved and analysis was
//     either accepted or not requested.
//   - A declined analysis keeps the staged copy until AcknowledgeDeclined.
//   - A failed upsert returns the error and keeps the staged copy.
type DiaryService interface {
	Save(ctx context.Context, d models.Draft) (SaveResult, error)
	AcknowledgeDeclined(ctx context.Context) error
	RecoverDraft(ctx context.Context) (*models.Draft, error)
	Analyze(ctx context.Context, logicalID string) (bool, error)
	AnalysisBusy() bool
	List(ctx context.Context) []models.DiaryRecord
	Get(ctx context.Context, logicalID string) (models.DiaryRecord, error)
	Delete(ctx context.Context, logicalID string) error
	Sync(ctx context.Context) (models.MergeStats, error)
}

type diaryService struct {
	store   RecordStore
	staging Stager
	queue   Admitter
	syncer  Syncer
	log     logging.Logger
}

// NewDiaryService wires the pipeline. syncer may be nil when the session
// has no remote.
func NewDiaryService(st RecordStore, stg Stager, q Admitter, syncer Syncer, log logging.Logger) DiaryService {
	return &diaryService{
		store:   st,
		staging: stg,
		queue:   q,
		syncer:  syncer,
		log:     log.With("component", "diary"),
	}
}

func (s *diaryService) Save(ctx context.Context, d models.Draft) (SaveResult, error) {
	if err := d.Validate(); err != nil {
		return SaveResult{}, err
	}
	if err := s.staging.Stage(ctx, d); err != nil {
		return SaveResult{}, err
	}

	rec, err := s.store.Upsert(ctx, d.Record())
	if err != nil {
		return SaveResult{}, fmt.Errorf("save error: %w", err)
	}

	res := SaveResult{Record: rec, AnalysisRequested: d.Analyze}
	if d.Analyze {
		res.AnalysisAccepted = s.queue.TryEnqueue(ctx, rec)
		if !res.AnalysisAccepted {
			s.log.Info(ctx, "analysis declined, keeping staged draft", "local_id", rec.LocalID)
			return res, nil
		}
	}

	if err := s.staging.Clear(ctx); err != nil {
		// the record itself is saved
		s.log.Warn(ctx, "failed to clear staged draft", "error", err)
	}
	return res, nil
}

func (s *diaryService) AcknowledgeDeclined(ctx context.Context) error {
	return s.staging.Clear(ctx)
}

func (s *diaryService) RecoverDraft(ctx context.Context) (*models.Draft, error) {
	return s.staging.RecoverPending(ctx)
}

// Analyze requests analysis for an already saved record.
func (s *diaryService) Analyze(ctx context.Context, logicalID string) (bool, error) {
	rec, ok := s.store.Get(logicalID)
	if !ok {
		return false, common.ErrNotFound
	}
	return s.queue.TryEnqueue(ctx, rec), nil
}

func (s *diaryService) AnalysisBusy() bool {
	return s.queue.Busy()
}

func (s *diaryService) List(ctx context.Context) []models.DiaryRecord {
	return s.store.List()
}

func (s *diaryService) Get(ctx context.Context, logicalID string) (models.DiaryRecord, error) {
	rec, ok := s.store.Get(logicalID)
	if !ok {
		return models.DiaryRecord{}, common.ErrNotFound
	}
	return rec, nil
}

func (s *diaryService) Delete(ctx context.Context, logicalID string) error {
	return s.store.Delete(ctx, logicalID)
}

func (s *diaryService) Sync(ctx context.Context) (models.MergeStats, error) {
	if s.syncer == nil {
		return models.MergeStats{}, common.ErrUnavailable
	}
	stats, err := s.syncer.Sync(ctx)
	if err != nil {
		return stats, fmt.Errorf("sync error: %w", err)
	}
	return stats, nil
}
