package client

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// Client is the remote diary service as the rest of the client sees it.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	ListRecords(ctx context.Context) ([]RemoteItem, error)
	CreateRecord(ctx context.Context, rec models.DiaryRecord) (string, error)
	UpdateRecord(ctx context.Context, remoteID string, rec models.DiaryRecord) error
	EnrichRecord(ctx context.Context, remoteID string, derived models.Derived) error
	FindRecordByDate(ctx context.Context, date models.Date) (string, bool, error)
	DeleteRecord(ctx context.Context, remoteID string) error

	Analyze(ctx context.Context, date models.Date, text string) (Analysis, error)

	IssuePairingCode(ctx context.Context) (models.PairingCode, error)
	ConsumePairingCode(ctx context.Context, code string) (models.Relationship, error)
	ListRelationships(ctx context.Context, role models.Role) ([]models.Relationship, error)
	Disconnect(ctx context.Context, targetID string) error
}
