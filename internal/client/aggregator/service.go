// Package aggregator implements the bulk aggregator channel: linking with
// a code, and best-effort pushes of a de-identified mood summary.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

// RecordSource lists the records to summarize.
type RecordSource interface {
	List() []models.DiaryRecord
}

type Service struct {
	endpoint  Endpoint
	runner    dbx.Runner
	records   RecordSource
	accountID string
	log       logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight bool
	again    bool
	wg       sync.WaitGroup
}

func New(endpoint Endpoint, runner dbx.Runner, records RecordSource, accountID string, log logging.Logger) *Service {
	return &Service{
		endpoint:  endpoint,
		runner:    runner,
		records:   records,
		accountID: accountID,
		log:       log.With("component", "aggregator"),
		now:       time.Now,
	}
}

func (s *Service) repo(tx dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(tx)
}

// Status reads the persisted link state.
func (s *Service) Status(ctx context.Context) (models.AggregatorLink, error) {
	var link models.AggregatorLink
	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		code, err := repo.Get(ctx, metadata.KeyAggregatorCode)
		if err != nil {
			return err
		}
		linked, err := metadata.GetBool(ctx, repo, metadata.KeyAggregatorLinked)
		if err != nil {
			return err
		}
		last, err := metadata.GetTime(ctx, repo, metadata.KeyAggregatorLastPush)
		if err != nil {
			return err
		}
		link = models.AggregatorLink{Code: string(code), Linked: linked && len(code) > 0, LastPushAt: last}
		return nil
	})
	if err != nil {
		return models.AggregatorLink{}, fmt.Errorf("failed to read aggregator link: %w", err)
	}
	return link, nil
}

// Link verifies code with the aggregator and, if accepted, persists the
// link. A rejected code yields common.ErrLinkRejected with the
// aggregator's message.
func (s *Service) Link(ctx context.Context, code string) (models.AggregatorLink, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.AggregatorLink{}, fmt.Errorf("%w: empty code", common.ErrLinkRejected)
	}

	res, err := s.endpoint.Verify(ctx, code)
	if err != nil {
		return models.AggregatorLink{}, fmt.Errorf("failed to verify link code: %w", err)
	}
	if !res.Valid {
		return models.AggregatorLink{}, fmt.Errorf("%w: %s", common.ErrLinkRejected, res.Message)
	}

	err = s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, metadata.KeyAggregatorCode, []byte(code)); err != nil {
			return err
		}
		if err := metadata.SetBool(ctx, repo, metadata.KeyAggregatorLinked, true); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyAggregatorLastPush)
	})
	if err != nil {
		return models.AggregatorLink{}, fmt.Errorf("failed to save aggregator link: %w", err)
	}

	s.log.Info(ctx, "aggregator linked")
	return models.AggregatorLink{Code: code, Linked: true}, nil
}

// Unlink forgets the code, the linked flag and the last push time together.
func (s *Service) Unlink(ctx context.Context) error {
	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		for _, k := range []string{metadata.KeyAggregatorCode, metadata.KeyAggregatorLinked, metadata.KeyAggregatorLastPush} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear aggregator link: %w", err)
	}
	s.log.Info(ctx, "aggregator unlinked")
	return nil
}

// PushNow sends the current summary. It returns common.ErrNotLinked when
// no link is set.
func (s *Service) PushNow(ctx context.Context) error {
	link, err := s.Status(ctx)
	if err != nil {
		return err
	}
	if !link.Linked {
		return common.ErrNotLinked
	}

	now := s.now()
	p := BuildPayload(link.Code, s.accountID, s.records.List(), now)
	accepted, err := s.endpoint.Push(ctx, p)
	if err != nil {
		return fmt.Errorf("aggregator push failed: %w", err)
	}
	if !accepted {
		return errors.New("aggregator push was not accepted")
	}

	err = s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		// Unlinked while the push was in flight.
		if ok, err := metadata.GetBool(ctx, repo, metadata.KeyAggregatorLinked); err != nil || !ok {
			return err
		}
		return metadata.SetTime(ctx, repo, metadata.KeyAggregatorLastPush, now)
	})
	if err != nil {
		return fmt.Errorf("failed to record aggregator push: %w", err)
	}
	s.log.Debug(ctx, "aggregator push accepted", "days", len(p.Moods), "risk", string(p.Risk))
	return nil
}

// Trigger starts a background push. While one is running, further
// triggers collapse into a single follow-up push. Failures are logged.
func (s *Service) Trigger(ctx context.Context) {
	s.mu.Lock()
	if s.inflight {
		s.again = true
		s.mu.Unlock()
		return
	}
	s.inflight = true
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			if err := s.PushNow(ctx); err != nil && !errors.Is(err, common.ErrNotLinked) {
				s.log.Warn(ctx, "aggregator push failed", "error", err)
			}

			s.mu.Lock()
			if !s.again {
				s.inflight = false
				s.mu.Unlock()
				return
			}
			s.again = false
			s.mu.Unlock()
		}
	}()
}

// OnChange is a store.Listener that pushes after every local save.
func (s *Service) OnChange(ctx context.Context, ch store.Change) {
	if ch.Origin == store.OriginLocal && ch.Kind == store.ChangeUpserted {
		s.Trigger(ctx)
	}
}

// Wait blocks until background pushes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
