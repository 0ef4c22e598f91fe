package aggregator

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/cryptox"
)

// Window is how far back the shared summary looks.
const Window = 14 * 24 * time.Hour

const displayIDLength = 16

// Payload is what gets shared with the aggregator.
type Payload struct {
	Code      string           `json:"code"`
	DisplayID string           `json:"display_id"`
	Risk      models.RiskLevel `json:"risk"`
	Moods     []DayMood        `json:"moods"`
	SentAt    time.Time        `json:"sent_at"`
}

// DayMood is one date-keyed mood score.
type DayMood struct {
	Date models.Date `json:"date"`
	Mood int         `json:"mood"`
}

// DisplayID derives an opaque identifier for accountID that is stable per
// link code. The account id itself never leaves the device.
func DisplayID(code, accountID string) string {
	return cryptox.OpaqueID(code, accountID, displayIDLength)
}

// BuildPayload summarizes the records of the last Window days before now.
func BuildPayload(code, accountID string, records []models.DiaryRecord, now time.Time) Payload {
	moods := recentMoods(records, now)
	return Payload{
		Code:      code,
		DisplayID: DisplayID(code, accountID),
		Risk:      Risk(moods),
		Moods:     moods,
		SentAt:    now.UTC(),
	}
}

func recentMoods(records []models.DiaryRecord, now time.Time) []DayMood {
	today := models.DateOf(now.UTC()).Time()
	from := today.Add(-Window + 24*time.Hour)

	out := make([]DayMood, 0, len(records))
	for _, r := range records {
		if r.Mood == 0 {
			continue
		}
		d := r.EntryDate.Time()
		if d.IsZero() || d.Before(from) || d.After(today) {
			continue
		}
		out = append(out, DayMood{Date: r.EntryDate, Mood: r.Mood})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Risk grades the share of low-mood days (mood 1 or 2).
func Risk(moods []DayMood) models.RiskLevel {
	if len(moods) == 0 {
		return models.RiskLow
	}
	low := 0
	for _, m := range moods {
		if m.Mood <= 2 {
			low++
		}
	}
	share := float64(low) / float64(len(moods))
	switch {
	case share >= 0.5:
		return models.RiskHigh
	case share >= 0.25:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}
