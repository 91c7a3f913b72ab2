package signatures

import (
	"time"

	"signing-backend/internal/documents"
)

// Role is the party a signature is given on behalf of.
type Role string

const (
	RoleContractor Role = "contractor"
	RoleArchitect  Role = "architect"
	RoleOwner      Role = "owner"
)

// RequiredRoles lists every role a document needs, in display order.
var RequiredRoles = []Role{RoleContractor, RoleArchitect, RoleOwner}

// Valid reports whether r is one of the required roles.
func (r Role) Valid() bool {
	switch r {
	case RoleContractor, RoleArchitect, RoleOwner:
		return true
	default:
		return false
	}
}

// Label is the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleContractor:
		return "Contractor"
	case RoleArchitect:
		return "Architect"
	case RoleOwner:
		return "Owner"
	default:
		return string(r)
	}
}

// Via records which flow produced a signature.
type Via string

const (
	ViaInternal Via = "internal"
	ViaExternal Via = "external"
)

// Record is one party's signature on a document. Records are never updated;
// a replacement is a delete followed by a create.
type Record struct {
	ID             string
	DocumentID     string
	DocumentType   documents.Type
	ProjectID      string
	Role           Role
	SignerName     string
	SignerTitle    *string
	ImageKey       string
	ImageMimeType  string
	ImageSizeBytes int64
	SignedVia      Via
	// CreatedBy is a user id, or "external:<requestID>" for invited signers.
	CreatedBy string
	SignedAt  time.Time
}

// ExternalCreator is the CreatedBy value for a signature submitted through
// a signature request.
func ExternalCreator(requestID string) string {
	return "external:" + requestID
}
