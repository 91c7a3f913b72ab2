package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Document, error)
	// MarkFullySignedNotified sets the completion guard if it is unset and
	// reports whether this call set it.
	MarkFullySignedNotified(ctx context.Context, documentID string, at time.Time) (bool, error)
	ClearFullySignedNotified(ctx context.Context, documentID string) error
}
