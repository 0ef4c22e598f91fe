package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
)

var errUsage = errors.New("usage")

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}

// lookup finds a record by date, by full id, or by a unique id prefix as
// shown in the list.
func (a *App) lookup(ctx context.Context, ref string) (models.DiaryRecord, error) {
	if date, err := models.ParseDate(ref); err == nil {
		for _, r := range a.diary.List(ctx) {
			if r.EntryDate == date {
				return r, nil
			}
		}
		return models.DiaryRecord{}, fmt.Errorf("no entry for %s: %w", date, common.ErrNotFound)
	}

	if r, err := a.diary.Get(ctx, ref); err == nil {
		return r, nil
	}

	var found []models.DiaryRecord
	for _, r := range a.diary.List(ctx) {
		if strings.HasPrefix(r.LogicalID(), ref) || strings.HasPrefix(r.LocalID, ref) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return models.DiaryRecord{}, fmt.Errorf("entry %q: %w", ref, common.ErrNotFound)
	case 1:
		return found[0], nil
	}
	return models.DiaryRecord{}, fmt.Errorf("id prefix %q matches %d entries", ref, len(found))
}

// New writes the entry for today or for the given date. An existing entry
// for that date is opened for editing.
func (a *App) New(ctx context.Context, args []string) error {
	date := models.DateOf(a.now())
	if len(args) > 0 {
		d, err := models.ParseDate(args[0])
		if err != nil {
			a.printErr(err)
			return err
		}
		date = d
	}

	base := models.Draft{EntryDate: date}
	if rec, err := a.lookup(ctx, date.String()); err == nil {
		fmt.Fprintf(a.out, "Editing the existing entry for %s\n", date)
		base = models.DraftFrom(rec)
	}
	return a.edit(ctx, base)
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("edit <id|date>")
	}
	rec, err := a.lookup(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}
	return a.edit(ctx, models.DraftFrom(rec))
}

func (a *App) edit(ctx context.Context, base models.Draft) error {
	d, err := readDraft(a.reader, a.out, base)
	if err != nil {
		a.printErr(err)
		return err
	}
	return a.save(ctx, d)
}

func (a *App) save(ctx context.Context, d models.Draft) error {
	res, err := a.diary.Save(ctx, d)
	if err != nil {
		a.printErr(err)
		return err
	}
	a.recovered = nil
	fmt.Fprintf(a.out, "Saved entry for %s\n", res.Record.EntryDate)

	if !res.AnalysisRequested {
		return nil
	}
	if res.AnalysisAccepted {
		fmt.Fprintln(a.out, "Analysis started; it will show up on the entry when ready.")
		return nil
	}

	fmt.Fprintf(a.out, "Another analysis is still running. Try again shortly with 'analyze %s'.\n", res.Record.EntryDate)
	if _, err := GetSimpleText(a.reader, "Press Enter to continue", a.out); err != nil {
		return nil
	}
	if err := a.diary.AcknowledgeDeclined(ctx); err != nil {
		a.printErr(err)
		return err
	}
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	recs := a.diary.List(ctx)
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No entries yet. Type 'new' to write one.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(a.out, formatLine(r))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("show <id|date>")
	}
	rec, err := a.lookup(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}
	printRecord(a.out, rec)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete <id|date>")
	}
	rec, err := a.lookup(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete the entry for %s? (y/N)", rec.EntryDate), a.out)
	if err != nil {
		return err
	}
	if ok, _ := ParseYesNo(answer); !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.diary.Delete(ctx, rec.LocalID); err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Deleted entry for %s\n", rec.EntryDate)
	return nil
}

func (a *App) Analyze(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("analyze <id|date>")
	}
	rec, err := a.lookup(ctx, args[0])
	if err != nil {
		a.printErr(err)
		return err
	}
	if strings.TrimSpace(rec.AnalysisText()) == "" {
		fmt.Fprintln(a.out, "The entry has no text to analyze.")
		return nil
	}

	ok, err := a.diary.Analyze(ctx, rec.LocalID)
	if err != nil {
		a.printErr(err)
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Another analysis is still running. Try again shortly.")
		return nil
	}
	fmt.Fprintln(a.out, "Analysis started; it will show up on the entry when ready.")
	return nil
}

func (a *App) Sync(ctx context.Context, args []string) error {
	stats, err := a.diary.Sync(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Sync done: %d new, %d updated, %d unchanged, %d skipped\n",
		stats.Created, stats.Updated, stats.Unchanged, stats.Skipped)
	return nil
}

// Recover reopens the recovered draft in the editor. It is never saved
// without the user going through the editor again.
func (a *App) Recover(ctx context.Context, args []string) error {
	d := a.recovered
	if d == nil {
		var err error
		if d, err = a.diary.RecoverDraft(ctx); err != nil {
			a.printErr(err)
			return err
		}
	}
	if d == nil {
		fmt.Fprintln(a.out, "Nothing to recover.")
		return nil
	}
	return a.edit(ctx, *d)
}

func (a *App) Discard(ctx context.Context, args []string) error {
	if err := a.diary.AcknowledgeDeclined(ctx); err != nil {
		a.printErr(err)
		return err
	}
	a.recovered = nil
	fmt.Fprintln(a.out, "Recovered draft dropped.")
	return nil
}
