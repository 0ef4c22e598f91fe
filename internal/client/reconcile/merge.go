package reconcile

import (
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/client"
	"github.com/dmitrijs2005/gophdiary/internal/client/identity"
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Merge folds a remote item into the local record for the same day.
//
// A RemoteID is bound only when local has none. Mood and derived fields
// are taken from the remote only where the local copy has nothing; the
// analysis placeholder counts as nothing on both sides. Narrative text
// the user has written locally is never overwritten; empty local fields
// are filled from the remote. The result is synced. changed reports
// whether anything differs from local.
func Merge(local models.DiaryRecord, remote client.RemoteItem) (merged models.DiaryRecord, changed bool) {
	m := local.Clone()
	rc := sanitize(remote.Content)

	setStr := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}

	if m = identity.Bind(m, remote.ID); m.RemoteID != local.RemoteID {
		changed = true
	}

	setStr(&m.Event, rc.Event)
	setStr(&m.Emotion, rc.Emotion)
	setStr(&m.Meaning, rc.Meaning)
	setStr(&m.SelfTalk, rc.SelfTalk)
	setStr(&m.SleepNote, rc.SleepNote)
	setStr(&m.Gratitude, rc.Gratitude)
	setStr(&m.Weather, rc.Weather)
	setStr(&m.MedicationDetail, rc.MedicationDetail)

	if m.Mood == 0 && rc.Mood != 0 {
		m.Mood = rc.Mood
		changed = true
	}
	if m.Temperature == nil && rc.Temperature != nil {
		v := *rc.Temperature
		m.Temperature = &v
		changed = true
	}
	if m.MedicationTaken == nil && rc.MedicationTaken != nil {
		v := *rc.MedicationTaken
		m.MedicationTaken = &v
		changed = true
	}
	if len(m.Symptoms) == 0 && len(rc.Symptoms) > 0 {
		m.Symptoms = append([]string(nil), rc.Symptoms...)
		changed = true
	}

	rd := remote.Derived.Settled()
	if m.AnalysisPending() && rd.Prediction != "" {
		m.Prediction = ""
	}
	setStr(&m.Prediction, rd.Prediction)
	setStr(&m.Analysis, rd.Analysis)
	setStr(&m.Advice, rd.Advice)
	if m.Confidence == 0 && rd.Confidence != 0 {
		m.Confidence = rd.Confidence
		changed = true
	}

	if m.SyncState != models.SyncStateSynced {
		m.SyncState = models.SyncStateSynced
		changed = true
	}
	if !m.SyncedOnce {
		m.SyncedOnce = true
		changed = true
	}

	return m, changed
}

// FromRemote builds a new local record for a remote item that matched
// nothing. The store mints its LocalID.
func FromRemote(remote client.RemoteItem, date models.Date, now time.Time) models.DiaryRecord {
	created := remote.CreatedAt
	if created.IsZero() {
		created = now
	}
	rec := models.DiaryRecord{
		RemoteID:   remote.ID,
		EntryDate:  date,
		CreatedAt:  created.UTC(),
		UpdatedAt:  created.UTC(),
		Content:    sanitize(remote.Content),
		Derived:    remote.Derived.Settled(),
		SyncState:  models.SyncStateSynced,
		SyncedOnce: true,
	}
	return rec.Clone()
}

// sanitize drops remote values the store would reject.
func sanitize(c models.Content) models.Content {
	if c.Mood < models.MinMood || c.Mood > models.MaxMood {
		c.Mood = 0
	}
	return c
}
