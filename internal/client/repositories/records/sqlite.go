package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert writes rec keyed by local_id. remote_id is stored as NULL while unbound.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec models.DiaryRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.LocalID, err)
	}

	query := `INSERT INTO diary_records (local_id, remote_id, entry_date, created_at, sync_state, body)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(local_id) DO UPDATE SET remote_id = excluded.remote_id,
				entry_date = excluded.entry_date,
				created_at = excluded.created_at,
				sync_state = excluded.sync_state,
				body = excluded.body
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.LocalID, nullable(rec.RemoteID), rec.EntryDate.String(),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), string(rec.SyncState), string(body))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.LocalID, err)
	}
	return nil
}

// GetAll decodes every row. Rows with a broken body are returned as ids in
// corrupt, the rest of the table still loads.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.DiaryRecord, []string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT local_id, body FROM diary_records`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var (
		result  []models.DiaryRecord
		corrupt []string
	)
	for rows.Next() {
		var (
			id   string
			body sql.NullString
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		var rec models.DiaryRecord
		if !body.Valid || json.Unmarshal([]byte(body.String), &rec) != nil || rec.LocalID != id {
			corrupt = append(corrupt, id)
			continue
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return result, corrupt, nil
}

// DeleteByLocalID removes the row for localID if present.
func (r *SQLiteRepository) DeleteByLocalID(ctx context.Context, localID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM diary_records WHERE local_id = ?`, localID); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", localID, err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
