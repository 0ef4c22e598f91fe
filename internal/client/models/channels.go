package models

import "time"

// PairingCodeTTL is how long an issued pairing code stays valid.
const PairingCodeTTL = 10 * time.Minute

// PairingCodeLength is the fixed length of a pairing code.
const PairingCodeLength = 6

// PairingCode is a short-lived token that lets another account become a
// viewer of the owner's diary. It only lives in process memory.
type PairingCode struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"owner_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is no longer valid at now.
func (p PairingCode) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Role selects one side of a sharing relationship.
type Role string

const (
	// RoleViewer lists accounts that view my diary.
	RoleViewer Role = "viewer"
	// RoleSharer lists accounts whose diaries I view.
	RoleSharer Role = "sharer"
)

// Relationship is a directed viewer→sharer link between two accounts.
type Relationship struct {
	ID        string    `json:"id"`
	ViewerID  string    `json:"viewer_id"`
	SharerID  string    `json:"sharer_id"`
	CreatedAt time.Time `json:"created_at"`
	// Role is the side the listing account holds, when known.
	Role Role `json:"role,omitempty"`
}

// AggregatorLink is the persisted state of the bulk aggregator channel.
type AggregatorLink struct {
	Code       string
	Linked     bool
	LastPushAt time.Time
}

// RiskLevel is the coarse indicator shared with the aggregator.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)
