// Package models defines the client-side data model of the diary: records,
// drafts, sync bookkeeping and the outbound-channel state.
package models

import (
	"slices"
	"strings"
	"time"
)

// SyncState tracks where a record is in its push lifecycle.
type SyncState string

const (
	SyncStateLocal         SyncState = "local"
	SyncStatePendingCreate SyncState = "pending_create"
	SyncStatePendingUpdate SyncState = "pending_update"
	SyncStateSynced        SyncState = "synced"
)

// PredictionPending is written to Prediction while an analysis request for
// the record is in flight, so list and calendar views can show it.
const PredictionPending = "analysis pending"

const (
	MinMood = 1
	MaxMood = 5
)

// DiaryRecord is one diary entry. There is never more than one record per
// EntryDate in a local store.
type DiaryRecord struct {
	// LocalID is minted on first save and never changes.
	LocalID string `json:"local_id"`
	// RemoteID is bound once the server accepts the record. It is only
	// cleared by removing the record after a remote deletion.
	RemoteID string `json:"remote_id,omitempty"`

	EntryDate Date      `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Content

	Derived

	SyncState SyncState `json:"sync_state"`
	// SyncedOnce is set by the first server acknowledgment and never
	// cleared. A not-found push answer for such a record means it was
	// deleted remotely.
	SyncedOnce bool `json:"synced_once,omitempty"`
}

// Content holds the user-authored part of a record.
type Content struct {
	Event     string `json:"event,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
	Meaning   string `json:"meaning,omitempty"`
	SelfTalk  string `json:"self_talk,omitempty"`
	SleepNote string `json:"sleep_note,omitempty"`

	// Mood is 1 (lowest) to 5. 0 means unset.
	Mood int `json:"mood,omitempty"`

	Weather     string   `json:"weather,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	MedicationTaken  *bool  `json:"medication_taken,omitempty"`
	MedicationDetail string `json:"medication_detail,omitempty"`

	Symptoms  []string `json:"symptoms,omitempty"`
	Gratitude string   `json:"gratitude,omitempty"`
}

// Derived holds machine-generated fields. None of them is required for a
// record to be valid.
type Derived struct {
	Prediction string  `json:"prediction,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Analysis   string  `json:"analysis,omitempty"`
	Advice     string  `json:"advice,omitempty"`
}

// LogicalID is the identity other components key on.
func (r DiaryRecord) LogicalID() string {
	if r.RemoteID != "" {
		return r.RemoteID
	}
	return r.LocalID
}

// HasAnalysis reports whether the record carries derived analysis text.
// The in-flight placeholder does not count.
func (r DiaryRecord) HasAnalysis() bool {
	return strings.TrimSpace(r.Analysis) != "" || strings.TrimSpace(r.Advice) != ""
}

// AnalysisPending reports whether an analysis request is marked in flight.
func (r DiaryRecord) AnalysisPending() bool {
	return r.Prediction == PredictionPending
}

// Settled returns d without the in-flight placeholder. The placeholder
// is local bookkeeping and never goes to or comes from the server.
func (d Derived) Settled() Derived {
	if d.Prediction == PredictionPending {
		d.Prediction = ""
	}
	return d
}

// NeedsPush reports whether local changes have not been acknowledged yet.
func (r DiaryRecord) NeedsPush() bool {
	return r.SyncState != SyncStateSynced
}

// Clone returns a deep copy so callers can never alias store-owned slices
// or pointers.
func (r DiaryRecord) Clone() DiaryRecord {
	c := r
	if r.Temperature != nil {
		v := *r.Temperature
		c.Temperature = &v
	}
	if r.MedicationTaken != nil {
		v := *r.MedicationTaken
		c.MedicationTaken = &v
	}
	if r.Symptoms != nil {
		c.Symptoms = append([]string(nil), r.Symptoms...)
	}
	return c
}

// Equal reports whether c and o hold the same user-authored values.
func (c Content) Equal(o Content) bool {
	if c.Event != o.Event || c.Emotion != o.Emotion || c.Meaning != o.Meaning ||
		c.SelfTalk != o.SelfTalk || c.SleepNote != o.SleepNote || c.Mood != o.Mood ||
		c.Weather != o.Weather || c.MedicationDetail != o.MedicationDetail || c.Gratitude != o.Gratitude {
		return false
	}
	if !equalPtr(c.Temperature, o.Temperature) || !equalPtr(c.MedicationTaken, o.MedicationTaken) {
		return false
	}
	return slices.Equal(c.Symptoms, o.Symptoms)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AnalysisText is the text submitted for analysis: the narrative fields in
// a fixed order, blank ones left out.
func (c Content) AnalysisText() string {
	parts := make([]string, 0, 6)
	for _, s := range []string{c.Event, c.Emotion, c.Meaning, c.SelfTalk, c.SleepNote, c.Gratitude} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// MergeStats summarizes one reconcile pass.
type MergeStats struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
}

// SyncCursor remembers when the last full sync pass completed.
type SyncCursor struct {
	LastSyncAt time.Time `json:"last_sync_at"`
}
