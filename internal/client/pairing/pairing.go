// Package pairing issues and consumes short-lived pairing codes and keeps
// the role-scoped relationship lists of the current account.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// ListTTL is how long a fetched relationship list is served from memory.
const ListTTL = time.Minute

const keyCurrentCode = "code"

var codePattern = regexp.MustCompile(fmt.Sprintf(`^[A-Z0-9]{%d}$`, models.PairingCodeLength))

// Remote is the part of the diary service the pairing channel uses.
type Remote interface {
	IssuePairingCode(ctx context.Context) (models.PairingCode, error)
	ConsumePairingCode(ctx context.Context, code string) (models.Relationship, error)
	ListRelationships(ctx context.Context, role models.Role) ([]models.Relationship, error)
	Disconnect(ctx context.Context, targetID string) error
}

type Service struct {
	remote  Remote
	ownerID string
	log     logging.Logger
	now     func() time.Time

	// No janitor goroutine: expired items are dropped on read.
	cache *cache.Cache
}

func New(remote Remote, ownerID string, log logging.Logger) *Service {
	return &Service{
		remote:  remote,
		ownerID: ownerID,
		log:     log.With("component", "pairing"),
		now:     time.Now,
		cache:   cache.New(ListTTL, 0),
	}
}

// NormalizeCode upper-cases and trims user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the pairing code format.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// IssueCode asks the server for a fresh code bound to this account and
// keeps it as the displayed code until it expires.
func (s *Service) IssueCode(ctx context.Context) (models.PairingCode, error) {
	pc, err := s.remote.IssuePairingCode(ctx)
	if err != nil {
		return models.PairingCode{}, fmt.Errorf("failed to issue pairing code: %w", err)
	}
	if !ValidCode(pc.Code) {
		return models.PairingCode{}, fmt.Errorf("%w: pairing code %q", common.ErrMalformedPayload, pc.Code)
	}

	now := s.now()
	if pc.IssuedAt.IsZero() {
		pc.IssuedAt = now
	}
	if pc.ExpiresAt.IsZero() {
		pc.ExpiresAt = pc.IssuedAt.Add(models.PairingCodeTTL)
	}
	if pc.OwnerID == "" {
		pc.OwnerID = s.ownerID
	}

	ttl := pc.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return models.PairingCode{}, fmt.Errorf("%w: pairing code already expired", common.ErrMalformedPayload)
	}
	s.cache.Set(keyCurrentCode, pc, ttl)
	s.log.Info(ctx, "pairing code issued", "expires_at", pc.ExpiresAt)
	return pc, nil
}

// Current returns the displayed code while it is still valid.
func (s *Service) Current() (models.PairingCode, bool) {
	v, ok := s.cache.Get(keyCurrentCode)
	if !ok {
		return models.PairingCode{}, false
	}
	pc := v.(models.PairingCode)
	if pc.Expired(s.now()) {
		s.cache.Delete(keyCurrentCode)
		return models.PairingCode{}, false
	}
	return pc, true
}

// ConsumeCode redeems another account's code, making this account a viewer
// of that account's diary.
func (s *Service) ConsumeCode(ctx context.Context, code string) (models.Relationship, error) {
	code = NormalizeCode(code)
	if !ValidCode(code) {
		return models.Relationship{}, fmt.Errorf("%w: %q", common.ErrInvalidPairingCode, code)
	}
	if own, ok := s.Current(); ok && own.Code == code {
		return models.Relationship{}, fmt.Errorf("%w: cannot pair with yourself", common.ErrInvalidPairingCode)
	}

	rel, err := s.remote.ConsumePairingCode(ctx, code)
	if errors.Is(err, common.ErrNotFound) {
		return models.Relationship{}, fmt.Errorf("%w: %v", common.ErrInvalidPairingCode, err)
	}
	if err != nil {
		return models.Relationship{}, fmt.Errorf("failed to consume pairing code: %w", err)
	}

	if _, err := s.refresh(ctx, models.RoleSharer); err != nil {
		s.log.Warn(ctx, "failed to refresh sharers after pairing", "error", err)
	}
	return rel, nil
}

// Viewers lists the accounts that can view this account's diary.
func (s *Service) Viewers(ctx context.Context) ([]models.Relationship, error) {
	return s.list(ctx, models.RoleViewer)
}

// Sharers lists the accounts whose diaries this account can view.
func (s *Service) Sharers(ctx context.Context) ([]models.Relationship, error) {
	return s.list(ctx, models.RoleSharer)
}

func (s *Service) list(ctx context.Context, role models.Role) ([]models.Relationship, error) {
	if v, ok := s.cache.Get(listKey(role)); ok {
		return cloneRels(v.([]models.Relationship)), nil
	}
	return s.refresh(ctx, role)
}

func (s *Service) refresh(ctx context.Context, role models.Role) ([]models.Relationship, error) {
	rels, err := s.remote.ListRelationships(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", role, err)
	}
	s.cache.Set(listKey(role), cloneRels(rels), cache.DefaultExpiration)
	return cloneRels(rels), nil
}

// Disconnect removes the relationship with targetID, whichever side this
// account was on, and refreshes both lists.
func (s *Service) Disconnect(ctx context.Context, targetID string) (viewers, sharers []models.Relationship, err error) {
	if strings.TrimSpace(targetID) == "" {
		return nil, nil, fmt.Errorf("%w: empty target", common.ErrNotFound)
	}
	if err := s.remote.Disconnect(ctx, targetID); err != nil {
		return nil, nil, fmt.Errorf("failed to disconnect %s: %w", targetID, err)
	}

	s.cache.Delete(listKey(models.RoleViewer))
	s.cache.Delete(listKey(models.RoleSharer))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		viewers, err = s.refresh(gctx, models.RoleViewer)
		return err
	})
	g.Go(func() error {
		var err error
		sharers, err = s.refresh(gctx, models.RoleSharer)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return viewers, sharers, nil
}

func listKey(role models.Role) string {
	return "rel:" + string(role)
}

func cloneRels(in []models.Relationship) []models.Relationship {
	return append([]models.Relationship(nil), in...)
}
