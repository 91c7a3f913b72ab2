package signrequests

import (
	"time"

	"signing-backend/internal/signatures"
)

// Status is the lifecycle state of a signature request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSigned    Status = "signed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Request invites an outside party to sign one role on a document. Only the
// hash of the bearer token is kept.
type Request struct {
	ID             string
	TokenHash      string
	DocumentID     string
	ProjectID      string
	Role           signatures.Role
	RecipientEmail string
	RecipientName  *string
	RequestedBy    string
	RequesterName  string
	RequesterEmail string
	Status         Status
	SignatureID    *string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	SignedAt       *time.Time
	CancelledAt    *time.Time
}

// EffectiveStatus derives expiry from the clock: a pending request past its
// deadline reads as expired. Nothing sweeps stored rows.
func (r Request) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusPending && now.After(r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}
