package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

var errNoAggregator = errors.New("aggregator is not configured (set -g or aggregator_url)")

func (a *App) aggregator() (aggregatorService, error) {
	if a.agg == nil {
		a.printErr(errNoAggregator)
		return nil, errNoAggregator
	}
	return a.agg, nil
}

func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("link <code>")
	}
	agg, err := a.aggregator()
	if err != nil {
		return err
	}
	if _, err := agg.Link(ctx, args[0]); err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintln(a.out, "Aggregator linked. Summaries are sent after each save.")
	return nil
}

func (a *App) Unlink(ctx context.Context, args []string) error {
	agg, err := a.aggregator()
	if err != nil {
		return err
	}
	if err := agg.Unlink(ctx); err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintln(a.out, "Aggregator unlinked.")
	return nil
}

func (a *App) AggregatorStatus(ctx context.Context, args []string) error {
	agg, err := a.aggregator()
	if err != nil {
		return err
	}
	link, err := agg.Status(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	if !link.Linked {
		fmt.Fprintln(a.out, "Aggregator: not linked")
		return nil
	}
	last := "never"
	if !link.LastPushAt.IsZero() {
		last = link.LastPushAt.Local().Format("2006-01-02 15:04")
	}
	fmt.Fprintf(a.out, "Aggregator: linked with %s, last push %s\n", link.Code, last)
	return nil
}

func (a *App) Push(ctx context.Context, args []string) error {
	agg, err := a.aggregator()
	if err != nil {
		return err
	}
	if err := agg.PushNow(ctx); err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintln(a.out, "Summary sent.")
	return nil
}

// Pair shows the current pairing code, issuing one when there is none or
// when "new" is given.
func (a *App) Pair(ctx context.Context, args []string) error {
	code, ok := a.pairing.Current()
	if !ok || (len(args) > 0 && args[0] == "new") {
		var err error
		if code, err = a.pairing.IssueCode(ctx); err != nil {
			a.printErr(err)
			return err
		}
	}
	fmt.Fprintf(a.out, "Pairing code: %s (valid until %s)\n", code.Code, code.ExpiresAt.Local().Format("15:04"))
	return nil
}

func (a *App) Join(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("join <code>")
	}
	rel, err := a.pairing.ConsumeCode(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "You can now view the diary of %s\n", rel.SharerID)
	return nil
}

func (a *App) Viewers(ctx context.Context, args []string) error {
	rels, err := a.pairing.Viewers(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	printRelationships(a.out, "Viewers", rels, viewerOf)
	return nil
}

func (a *App) Sharers(ctx context.Context, args []string) error {
	rels, err := a.pairing.Sharers(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	printRelationships(a.out, "Sharers", rels, sharerOf)
	return nil
}

func (a *App) Disconnect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("disconnect <id>")
	}
	viewers, sharers, err := a.pairing.Disconnect(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintln(a.out, "Disconnected.")
	printRelationships(a.out, "Viewers", viewers, viewerOf)
	printRelationships(a.out, "Sharers", sharers, sharerOf)
	return nil
}

func viewerOf(r models.Relationship) string { return r.ViewerID }

func sharerOf(r models.Relationship) string { return r.SharerID }
