// Package session wires every client component for one signed-in account
// and owns their lifetime.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/aggregator"
	"github.com/dmitrijs2005/gophdiary/internal/client/analysis"
	"github.com/dmitrijs2005/gophdiary/internal/client/client"
	"github.com/dmitrijs2005/gophdiary/internal/client/config"
	"github.com/dmitrijs2005/gophdiary/internal/client/pairing"
	"github.com/dmitrijs2005/gophdiary/internal/client/reconcile"
	"github.com/dmitrijs2005/gophdiary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdiary/internal/client/scheduler"
	"github.com/dmitrijs2005/gophdiary/internal/client/services"
	"github.com/dmitrijs2005/gophdiary/internal/client/staging"
	"github.com/dmitrijs2005/gophdiary/internal/client/store"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/filex"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"google.golang.org/grpc"

	_ "modernc.org/sqlite"
)

const (
	DatabaseFile = "diary.db"

	taskPull       = "pull"
	taskAggregator = "aggregator"
	taskOnline     = "online"
	taskInitial    = "initial-sync"

	pingTimeout = 3 * time.Second
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type options struct {
	dialOpts   []grpc.DialOption
	httpClient *http.Client
}

type Option func(*options)

// WithDialOptions adds gRPC dial options for the remote client.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) { o.dialOpts = append(o.dialOpts, opts...) }
}

// WithHTTPClient sets the HTTP client used by the aggregator channel.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// Session is an opened account. Fields are ready to use until Close.
type Session struct {
	AccountID string
	Dir       string

	Store      *store.Store
	Reconciler *reconcile.Reconciler
	Queue      *analysis.Queue
	Staging    *staging.Staging
	Diary      services.DiaryService
	Pairing    *pairing.Service
	// Aggregator is nil when no aggregator URL is configured.
	Aggregator *aggregator.Service

	cfg    *config.Config
	log    logging.Logger
	db     *sql.DB
	remote *client.GRPCClient
	sched  *scheduler.Scheduler
	unsubs []func()

	mu        sync.Mutex
	mode      Mode
	closeOnce sync.Once
}

// Open builds the session for the account named by token.
func Open(ctx context.Context, cfg *config.Config, token string, log logging.Logger, opts ...Option) (*Session, error) {
	o := options{httpClient: &http.Client{Timeout: aggregator.DefaultHTTPTimeout}}
	for _, opt := range opts {
		opt(&o)
	}

	accountID, err := services.AccountID(token)
	if err != nil {
		return nil, err
	}
	log = log.With("account", accountID)

	dir, err := filex.EnsureDir(cfg.DataDir, filex.AccountDirName(accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := client.NewDiaryClient(cfg.ServerEndpointAddr, token, o.dialOpts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating remote client: %w", err)
	}

	s := &Session{
		AccountID: accountID,
		Dir:       dir,
		cfg:       cfg,
		log:       log.With("component", "session"),
		db:        db,
		remote:    remote,
		mode:      ModeOffline,
	}

	runner := dbx.NewRunner(db)
	meta := metadata.NewSQLiteRepository(db)

	s.Store = store.New(runner, log)
	s.Store.Load(ctx)

	s.Reconciler = reconcile.New(s.Store, remote, meta, log)
	s.unsubs = append(s.unsubs, s.Store.Subscribe(s.Reconciler.OnChange))
	s.Reconciler.Start(context.WithoutCancel(ctx))

	s.Queue = analysis.New(s.Store, remote, log, analysis.WithTimeout(cfg.AnalysisTimeout))
	if _, err := s.Queue.ResetStale(ctx); err != nil {
		s.log.Warn(ctx, "failed to reset analysis placeholders", "error", err)
	}

	s.Staging = staging.New(meta, log)
	s.Diary = services.NewDiaryService(s.Store, s.Staging, s.Queue, s.Reconciler, log)
	s.Pairing = pairing.New(remote, accountID, log)

	if cfg.AggregatorURL != "" {
		endpoint := aggregator.NewHTTPEndpoint(cfg.AggregatorURL, o.httpClient)
		s.Aggregator = aggregator.New(endpoint, runner, s.Store, accountID, log)
		s.unsubs = append(s.unsubs, s.Store.Subscribe(s.Aggregator.OnChange))
	}

	s.sched = scheduler.New(context.WithoutCancel(ctx), log)
	s.schedule()

	s.log.Info(ctx, "session opened", "dir", dir, "records", len(s.Store.List()))
	return s, nil
}

func (s *Session) schedule() {
	s.sched.After(taskInitial, 0, s.checkOnline)
	s.sched.Every(taskOnline, s.cfg.OnlineCheckInterval, s.checkOnline)
	s.sched.Every(taskPull, s.cfg.PullInterval, s.pull)
	if s.Aggregator != nil {
		s.sched.Every(taskAggregator, s.cfg.AggregatorInterval, s.Aggregator.Trigger)
	}
}

// checkOnline pings the remote and runs a sync on an offline to online
// transition.
func (s *Session) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := s.remote.Ping(pctx)
	cancel()

	mode := ModeOnline
	if err != nil {
		mode = ModeOffline
	}
	if prev := s.setMode(mode); prev == mode {
		return
	}
	s.log.Info(ctx, "connectivity changed", "mode", mode)

	if mode == ModeOnline {
		s.pull(ctx)
	}
}

func (s *Session) pull(ctx context.Context) {
	if s.Mode() != ModeOnline {
		return
	}
	stats, err := s.Reconciler.Sync(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.setMode(ModeOffline)
		}
		s.log.Warn(ctx, "background sync failed", "error", err)
		return
	}
	s.log.Debug(ctx, "background sync done",
		"created", stats.Created, "updated", stats.Updated, "skipped", stats.Skipped)
}

func (s *Session) setMode(m Mode) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.mode
	s.mode = m
	return prev
}

// Mode reports the last observed connectivity.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Close stops background work and releases the database and connection,
// in reverse order of Open. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.sched.Close()
		for i := len(s.unsubs) - 1; i >= 0; i-- {
			s.unsubs[i]()
		}
		if s.Aggregator != nil {
			s.Aggregator.Wait()
		}
		s.Queue.Cancel()
		s.Queue.Wait()
		s.Reconciler.Stop()

		err = errors.Join(s.remote.Close(), s.db.Close())
		s.log.Info(context.Background(), "session closed")
	})
	return err
}
