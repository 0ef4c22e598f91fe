package records

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Repository describes persistence operations for diary records.
type Repository interface {
	// Upsert inserts a record or replaces the row with the same LocalID.
	Upsert(ctx context.Context, rec models.DiaryRecord) error

	// GetAll returns every decodable record and the local ids of rows whose
	// body could not be decoded.
	GetAll(ctx context.Context) ([]models.DiaryRecord, []string, error)

	// DeleteByLocalID removes a record. Deleting a missing row is not an error.
	DeleteByLocalID(ctx context.Context, localID string) error
}
