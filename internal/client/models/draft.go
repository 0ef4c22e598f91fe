package models

import (
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/common"
)

// Draft is what the editor hands to the save pipeline. It is also the
// payload of the crash-recovery staging slot.
type Draft struct {
	// LocalID is set when the draft edits an existing record.
	LocalID   string  `json:"local_id,omitempty"`
	EntryDate Date    `json:"entry_date"`
	Content   Content `json:"content"`
	// Analyze asks for derived analysis after the save.
	Analyze bool `json:"analyze,omitempty"`
}

// Validate checks the fields a record cannot be saved without.
func (d Draft) Validate() error {
	if !d.EntryDate.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidDate, d.EntryDate)
	}
	if d.Content.Mood != 0 && (d.Content.Mood < MinMood || d.Content.Mood > MaxMood) {
		return fmt.Errorf("%w: %d", common.ErrInvalidMood, d.Content.Mood)
	}
	return nil
}

// Record converts the draft into a record ready for upsert. Identity and
// timestamps are filled by the store.
func (d Draft) Record() DiaryRecord {
	r := DiaryRecord{
		LocalID:   d.LocalID,
		EntryDate: d.EntryDate,
		Content:   d.Content,
	}
	return r.Clone()
}

// DraftFrom builds an editable draft from an existing record.
func DraftFrom(r DiaryRecord) Draft {
	c := r.Clone()
	return Draft{LocalID: c.LocalID, EntryDate: c.EntryDate, Content: c.Content}
}
