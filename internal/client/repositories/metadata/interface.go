// Package metadata stores small key/value state next to the diary records:
// the sync cursor, the crash-recovery staging slot and the aggregator link.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyStagingDraft       = "staging.draft"
	KeyLastSyncAt         = "sync.last_sync_at"
	KeyAggregatorCode     = "aggregator.code"
	KeyAggregatorLinked   = "aggregator.linked"
	KeyAggregatorLastPush = "aggregator.last_push_at"
)

// Repository is a byte-valued key/value table. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
