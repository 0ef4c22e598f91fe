package store

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Origin tells listeners who caused a change.
type Origin int

const (
	// OriginLocal is a user edit through Upsert or Delete.
	OriginLocal Origin = iota
	// OriginRemote is a change pulled from the server.
	OriginRemote
	// OriginSystem is internal bookkeeping such as push acknowledgments or
	// analysis placeholders.
	OriginSystem
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ChangeKind is the kind of a store change.
type ChangeKind int

const (
	ChangeUpserted ChangeKind = iota
	ChangeDeleted
	// ChangeMerged is emitted once per completed Apply batch.
	ChangeMerged
)

// Change describes one committed mutation. For ChangeUpserted and
// ChangeDeleted, Record is the affected record; an upsert that replaced a
// record also carries it in Previous. For ChangeMerged, Records holds the
// records written by the batch and Removed the ones dropped.
type Change struct {
	Kind     ChangeKind
	Origin   Origin
	Record   models.DiaryRecord
	Previous *models.DiaryRecord
	Records  []models.DiaryRecord
	Removed  []models.DiaryRecord
}

// Listener is called after a change is committed. It runs on the mutating
// goroutine and must not block or call back into mutating Store methods.
type Listener func(ctx context.Context, ch Change)
