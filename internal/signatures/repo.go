package signatures

import "context"

// Repo persists signature records.
type Repo interface {
	// Create inserts rec, or returns ErrRoleAlreadySigned when the document
	// already has a record for rec.Role.
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, signatureID string) (Record, error)
	// ListByDocument returns the document's records ordered by role.
	ListByDocument(ctx context.Context, documentID string) ([]Record, error)
	Delete(ctx context.Context, signatureID string) error
}
