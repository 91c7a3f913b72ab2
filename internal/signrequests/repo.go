package signrequests

import (
	"context"
	"time"
)

// Repo persists signature requests.
type Repo interface {
	Create(ctx context.Context, req Request) error
	GetByID(ctx context.Context, requestID string) (Request, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (Request, error)
	ListByDocument(ctx context.Context, documentID string) ([]Request, error)
	// ClaimForSigning moves a pending, unexpired request to signed and
	// reports whether this call did it.
	ClaimForSigning(ctx context.Context, requestID string, now time.Time) (bool, error)
	// ReleaseClaim undoes a claim whose signature could not be recorded.
	ReleaseClaim(ctx context.Context, requestID string) error
	AttachSignature(ctx context.Context, requestID, signatureID string) error
	// Cancel moves a pending request to cancelled and reports whether this
	// call did it.
	Cancel(ctx context.Context, requestID string, at time.Time) (bool, error)
}
