// Package store is the durable, in-memory mirrored collection of diary
// records.
//
// Every mutation goes through the Store's mutex, is written to SQLite in a
// single transaction and only then applied to the mirror, so a failed or
// torn write is never visible to readers. Listeners are notified after the
// mirror is updated; the reconciler's push dispatcher and the aggregator
// channel subscribe this way.
//
// Upsert and Delete are the user-facing entry points and carry
// OriginLocal. Apply is the batch path used by the reconciler and the
// analysis queue; its changes carry OriginRemote or OriginSystem and never
// trigger a push.
package store
