package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/config"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/services"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

type pairingService interface {
	IssueCode(ctx context.Context) (models.PairingCode, error)
	Current() (models.PairingCode, bool)
	ConsumeCode(ctx context.Context, code string) (models.Relationship, error)
	Viewers(ctx context.Context) ([]models.Relationship, error)
	Sharers(ctx context.Context) ([]models.Relationship, error)
	Disconnect(ctx context.Context, targetID string) (viewers, sharers []models.Relationship, err error)
}

type aggregatorService interface {
	Status(ctx context.Context) (models.AggregatorLink, error)
	Link(ctx context.Context, code string) (models.AggregatorLink, error)
	Unlink(ctx context.Context) error
	PushNow(ctx context.Context) error
}

type App struct {
	config *config.Config
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	diary   services.DiaryService
	pairing pairingService
	// agg is nil when no aggregator is configured.
	agg     aggregatorService
	mode    func() session.Mode
	account string

	recovered *models.Draft
}

func NewApp(c *config.Config, log logging.Logger) *App {
	return &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		now:    time.Now,
	}
}

// Run asks for the access token if the config has none, opens the account
// session and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	token := a.config.AccessToken
	if token == "" {
		var err error
		if token, err = GetSecret("Enter access token: ", a.out); err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
	}

	sess, err := session.Open(ctx, a.config, token, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			a.log.Warn(ctx, "session close failed", "error", err)
		}
	}()
	a.attach(sess)

	fmt.Fprintln(a.out, "Welcome to the diary CLI (type 'help' for commands)")
	a.checkRecovered(ctx)

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) attach(s *session.Session) {
	a.diary = s.Diary
	a.pairing = s.Pairing
	if s.Aggregator != nil {
		a.agg = s.Aggregator
	}
	a.mode = s.Mode
	a.account = s.AccountID
}

// checkRecovered tells the user about a draft left by an interrupted save.
func (a *App) checkRecovered(ctx context.Context) {
	d, err := a.diary.RecoverDraft(ctx)
	if err != nil {
		a.printErr(err)
		return
	}
	a.recovered = d
	if d != nil {
		fmt.Fprintf(a.out, "An unsaved entry for %s was recovered. Type 'recover' to continue editing it or 'discard' to drop it.\n", d.EntryDate)
	}
}

func (a *App) status() string {
	s := a.account
	if a.mode != nil {
		if s != "" {
			s += " "
		}
		s += string(a.mode())
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) printErr(err error) {
	fmt.Fprintf(a.out, "error: %v\n", err)
}
