// Package records provides the SQLite persistence of diary records.
//
// Each row keeps the identity and index columns the database needs
// (local_id, remote_id, entry_date, created_at, sync_state) next to the full
// record encoded as JSON in body. The JSON body is the source of truth when
// loading; a row whose body cannot be decoded is reported back to the caller
// instead of failing the whole load.
//
// Typical Usage
//
//	repo := records.NewSQLiteRepository(tx)
//	_ = repo.Upsert(ctx, rec)
//	all, corrupt, _ := repo.GetAll(ctx)
//	_ = repo.DeleteByLocalID(ctx, id)
package records
