// Package identity unifies a locally minted record id and a server assigned
// id into one logical record.
package identity

import (
	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/google/uuid"
)

// NewLocalID mints a fresh local identifier.
func NewLocalID() string {
	return uuid.NewString()
}

// Matches reports whether a and b denote the same logical record by id:
// equal remote ids, or equal local ids. Dates are not considered.
func Matches(a, b models.DiaryRecord) bool {
	if a.RemoteID != "" && a.RemoteID == b.RemoteID {
		return true
	}
	return a.LocalID != "" && a.LocalID == b.LocalID
}

// Resolve returns the index in records of the record incoming should
// replace, or -1. The order is RemoteID, then LocalID, then EntryDate, so
// a second save for the same day lands on the existing record.
func Resolve(records []models.DiaryRecord, incoming models.DiaryRecord) int {
	if incoming.RemoteID != "" {
		for i := range records {
			if records[i].RemoteID == incoming.RemoteID {
				return i
			}
		}
	}
	if incoming.LocalID != "" {
		for i := range records {
			if records[i].LocalID == incoming.LocalID {
				return i
			}
		}
	}
	return ByDate(records, incoming.EntryDate)
}

// ByDate returns the index of the record for date, or -1.
func ByDate(records []models.DiaryRecord, date models.Date) int {
	if date.IsZero() {
		return -1
	}
	for i := range records {
		if records[i].EntryDate == date {
			return i
		}
	}
	return -1
}

// ByLogicalID returns the index of the record whose LogicalID, LocalID or
// RemoteID is id, or -1.
func ByLogicalID(records []models.DiaryRecord, id string) int {
	if id == "" {
		return -1
	}
	for i := range records {
		r := records[i]
		if r.LogicalID() == id || r.LocalID == id || r.RemoteID == id {
			return i
		}
	}
	return -1
}

// Bind attaches remoteID to rec. An already bound id is kept, so identity
// only ever moves from absent to present.
func Bind(rec models.DiaryRecord, remoteID string) models.DiaryRecord {
	if rec.RemoteID == "" && remoteID != "" {
		rec.RemoteID = remoteID
	}
	return rec
}
