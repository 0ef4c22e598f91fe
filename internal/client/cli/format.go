package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// formatLine renders a record as one list row.
func formatLine(r models.DiaryRecord) string {
	mood := "-"
	if r.Mood > 0 {
		mood = moodText(r.Mood)
	}
	line := fmt.Sprintf("%s  mood %s  %-14s  %s", r.EntryDate, mood, syncLabel(r), shortID(r.LogicalID()))
	if r.AnalysisPending() {
		line += "  (analysis pending)"
	}
	if ev := abbreviate(r.Event, 40); ev != "" {
		line += "  " + ev
	}
	return line
}

func syncLabel(r models.DiaryRecord) string {
	if r.SyncState == "" {
		return string(models.SyncStateLocal)
	}
	return string(r.SyncState)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printRecord writes every non-empty field of r to w.
func printRecord(w io.Writer, r models.DiaryRecord) {
	fmt.Fprintf(w, "Date:        %s\n", r.EntryDate)
	fmt.Fprintf(w, "ID:          %s\n", r.LogicalID())
	fmt.Fprintf(w, "Sync:        %s\n", syncLabel(r))

	row := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			fmt.Fprintf(w, "%-12s %s\n", label+":", v)
		}
	}
	row("Mood", moodText(r.Mood))
	row("Event", r.Event)
	row("Emotion", r.Emotion)
	row("Meaning", r.Meaning)
	row("Self talk", r.SelfTalk)
	row("Sleep", r.SleepNote)
	row("Gratitude", r.Gratitude)
	row("Weather", r.Weather)
	row("Temperature", floatText(r.Temperature))
	row("Medication", boolText(r.MedicationTaken))
	row("Med details", r.MedicationDetail)
	row("Symptoms", strings.Join(r.Symptoms, ", "))

	switch {
	case r.AnalysisPending():
		row("Analysis", "pending")
	case r.HasAnalysis() || r.Prediction != "":
		row("Prediction", r.Prediction)
		if r.Confidence > 0 {
			row("Confidence", fmt.Sprintf("%.0f%%", r.Confidence*100))
		}
		row("Analysis", r.Analysis)
		row("Advice", r.Advice)
	}
}

func printRelationships(w io.Writer, title string, rels []models.Relationship, other func(models.Relationship) string) {
	if len(rels) == 0 {
		fmt.Fprintf(w, "%s: none\n", title)
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, rel := range rels {
		fmt.Fprintf(w, "  %s  since %s\n", other(rel), rel.CreatedAt.Format("2006-01-02"))
	}
}
