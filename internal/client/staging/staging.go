// Package staging keeps a crash-recovery copy of the draft being saved.
//
// The draft is written to a single well-known metadata key before the
// save pipeline starts and removed once it completes. A draft found on the
// next launch is handed back to the editor; it is never re-submitted
// automatically.
package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

type Staging struct {
	repo metadata.Repository
	log  logging.Logger
}

func New(repo metadata.Repository, log logging.Logger) *Staging {
	return &Staging{repo: repo, log: log.With("component", "staging")}
}

// Stage overwrites the slot with d.
func (s *Staging) Stage(ctx context.Context, d models.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.repo.Set(ctx, metadata.KeyStagingDraft, b); err != nil {
		return fmt.Errorf("failed to stage draft: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *Staging) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, metadata.KeyStagingDraft); err != nil {
		return fmt.Errorf("failed to clear staged draft: %w", err)
	}
	return nil
}

// RecoverPending returns the staged draft, or nil when the slot is empty.
// A slot that cannot be decoded is logged, cleared and reported as empty.
func (s *Staging) RecoverPending(ctx context.Context) (*models.Draft, error) {
	b, err := s.repo.Get(ctx, metadata.KeyStagingDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged draft: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	var d models.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		s.log.Warn(ctx, "discarding corrupt staged draft", "error", err, "size", len(b))
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &d, nil
}
