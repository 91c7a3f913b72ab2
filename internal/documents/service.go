package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"signing-backend/internal/projects"
)

// CreateInput carries the fields of a new document.
type CreateInput struct {
	Type        Type
	Number      string
	Title       string
	AmountCents *int64
}

// Service contains business logic for documents.
type Service struct {
	Repo     DocumentsRepo
	Projects *projects.Service
	Now      func() time.Time
}

// Create records a document in a project the caller belongs to.
func (s *Service) Create(ctx context.Context, userID, projectID string, in CreateInput) (Document, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Title = strings.TrimSpace(in.Title)
	if !in.Type.Valid() {
		return Document{}, fmt.Errorf("%w: documentType must be pay_application or change_order", ErrInvalidInput)
	}
	if in.Number == "" {
		return Document{}, fmt.Errorf("%w: number is required", ErrInvalidInput)
	}
	if in.Title == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.AmountCents != nil && *in.AmountCents < 0 {
		return Document{}, fmt.Errorf("%w: amountCents must not be negative", ErrInvalidInput)
	}
	if err := s.Projects.RequireMember(ctx, projectID, userID); err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Type:        in.Type,
		Number:      in.Number,
		Title:       in.Title,
		AmountCents: in.AmountCents,
		CreatedBy:   userID,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document whose project the caller belongs to.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	doc, err := s.Lookup(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if err := s.Projects.RequireMember(ctx, doc.ProjectID, userID); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Lookup returns a document without a membership check.
func (s *Service) Lookup(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, documentID)
}

// ListByProject returns a page of a project's documents.
func (s *Service) ListByProject(ctx context.Context, userID, projectID string, limit, offset int) ([]Document, error) {
	if err := s.Projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByProject(ctx, projectID, limit, offset)
}

// ClaimCompletionNotice reports whether the caller won the right to send
// the fully-signed notice for the document.
func (s *Service) ClaimCompletionNotice(ctx context.Context, documentID string) (bool, error) {
	return s.Repo.MarkFullySignedNotified(ctx, documentID, s.now())
}

// ReleaseCompletionNotice lets a later re-completion notify again.
func (s *Service) ReleaseCompletionNotice(ctx context.Context, documentID string) error {
	return s.Repo.ClearFullySignedNotified(ctx, documentID)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
