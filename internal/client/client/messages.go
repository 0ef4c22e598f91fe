package client

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// RemoteItem is one record as the service returns it. EntryDate is left as
// sent so the reconciler can normalize it; Malformed marks an item whose
// payload could not be decoded at all.
type RemoteItem struct {
	ID        string    `json:"id"`
	EntryDate string    `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	models.Content
	models.Derived

	Malformed bool `json:"-"`
}

// RecordPayload is the full content schema accepted by create and update.
type RecordPayload struct {
	EntryDate string    `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	models.Content
	models.Derived
}

// PayloadFrom builds the wire payload for r. The analysis placeholder is
// left out.
func PayloadFrom(r models.DiaryRecord) RecordPayload {
	c := r.Clone()
	return RecordPayload{
		EntryDate: c.EntryDate.String(),
		CreatedAt: c.CreatedAt,
		Content:   c.Content,
		Derived:   c.Derived.Settled(),
	}
}

// Analysis is the result of an analysis request.
type Analysis struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Analysis   string  `json:"analysis"`
	Advice     string  `json:"advice"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListRecordsRequest struct{}

// ListRecordsResponse keeps items raw so one bad item does not fail the
// whole list.
type ListRecordsResponse struct {
	Items []json.RawMessage `json:"items"`
}

type CreateRecordRequest struct {
	Record RecordPayload `json:"record"`
}

type CreateRecordResponse struct {
	ID string `json:"id"`
}

type UpdateRecordRequest struct {
	ID     string        `json:"id"`
	Record RecordPayload `json:"record"`
}

type UpdateRecordResponse struct{}

type EnrichRecordRequest struct {
	ID      string         `json:"id"`
	Derived models.Derived `json:"derived"`
}

type EnrichRecordResponse struct{}

type FindRecordByDateRequest struct {
	EntryDate string `json:"entry_date"`
}

type FindRecordByDateResponse struct {
	Found bool   `json:"found"`
	ID    string `json:"id,omitempty"`
}

type DeleteRecordRequest struct {
	ID string `json:"id"`
}

type DeleteRecordResponse struct{}

type AnalyzeRequest struct {
	EntryDate string `json:"entry_date"`
	Text      string `json:"text"`
}

type AnalyzeResponse struct {
	Analysis
}

type IssuePairingCodeRequest struct{}

type IssuePairingCodeResponse struct {
	Code models.PairingCode `json:"code"`
}

type ConsumePairingCodeRequest struct {
	Code string `json:"code"`
}

type ConsumePairingCodeResponse struct {
	Relationship models.Relationship `json:"relationship"`
}

type ListRelationshipsRequest struct {
	Role models.Role `json:"role"`
}

type ListRelationshipsResponse struct {
	Relationships []models.Relationship `json:"relationships"`
}

type DisconnectRequest struct {
	TargetID string `json:"target_id"`
}

type DisconnectResponse struct{}
