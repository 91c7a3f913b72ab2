package signatures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
	"signing-backend/internal/shared/metrics"
	"signing-backend/internal/shared/storage/object"
	"signing-backend/internal/shared/telemetry"
	"signing-backend/internal/shared/util"
)

const (
	maxSignerNameLength  = 200
	maxSignerTitleLength = 200
)

// CreateInput is a captured signature as submitted by a signer.
type CreateInput struct {
	Role        Role
	SignerName  string
	SignerTitle *string
	ImageData   string
}

// Status is a document's signatures plus its derived completion state.
type Status struct {
	Document     documents.Document
	Records      []Record
	FullySigned  bool
	MissingRoles []Role
}

// Outcome describes the result of a successful create.
type Outcome struct {
	Record       Record
	FullySigned  bool
	MissingRoles []Role
	// Notified is true when this create completed the document and won the
	// right to send the fully-signed notice.
	Notified bool
}

// Service contains business logic for signature records.
type Service struct {
	Repo        Repo
	Store       object.ObjectStore
	Documents   *documents.Service
	Projects    *projects.Service
	Notifier    notifications.Dispatcher
	AdminEmails []string
	Now         func() time.Time
}

// List returns the document's signatures for a project member.
func (s *Service) List(ctx context.Context, userID, documentID string) (Status, error) {
	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return Status{}, err
	}
	records, err := s.Repo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return Status{}, err
	}
	missing := MissingRoles(records)
	return Status{
		Document:     doc,
		Records:      records,
		FullySigned:  len(missing) == 0,
		MissingRoles: missing,
	}, nil
}

// RoleSigned reports whether the document already has a record for role.
func (s *Service) RoleSigned(ctx context.Context, documentID string, role Role) (bool, error) {
	records, err := s.Repo.ListByDocument(ctx, documentID)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// Create records a member's signature on a document.
func (s *Service) Create(ctx context.Context, userID, documentID string, in CreateInput) (Outcome, error) {
	in, img, err := ValidateInput(in)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return Outcome{}, err
	}
	return s.create(ctx, doc, in, img, ViaInternal, userID)
}

// CreateExternal records a signature submitted through signature request
// requestID. The caller has already authorized the submission by token.
func (s *Service) CreateExternal(ctx context.Context, doc documents.Document, requestID string, in CreateInput) (Outcome, error) {
	in, img, err := ValidateInput(in)
	if err != nil {
		return Outcome{}, err
	}
	return s.create(ctx, doc, in, img, ViaExternal, ExternalCreator(requestID))
}

// ValidateInput normalizes in and decodes its image.
func ValidateInput(in CreateInput) (CreateInput, Image, error) {
	in.SignerName = strings.TrimSpace(in.SignerName)
	in.SignerTitle = util.OptionalString(in.SignerTitle)
	if !in.Role.Valid() {
		return in, Image{}, fmt.Errorf("%w: role must be contractor, architect or owner", ErrInvalidInput)
	}
	if in.SignerName == "" {
		return in, Image{}, fmt.Errorf("%w: signer name is required", ErrInvalidInput)
	}
	if len(in.SignerName) > maxSignerNameLength {
		return in, Image{}, fmt.Errorf("%w: signer name is too long", ErrInvalidInput)
	}
	if in.SignerTitle != nil && len(*in.SignerTitle) > maxSignerTitleLength {
		return in, Image{}, fmt.Errorf("%w: signer title is too long", ErrInvalidInput)
	}
	img, err := ParseImageData(in.ImageData)
	if err != nil {
		return in, Image{}, err
	}
	return in, img, nil
}

func (s *Service) create(ctx context.Context, doc documents.Document, in CreateInput, img Image, via Via, createdBy string) (Outcome, error) {
	signed, err := s.RoleSigned(ctx, doc.ID, in.Role)
	if err != nil {
		return Outcome{}, err
	}
	if signed {
		return Outcome{}, ErrRoleAlreadySigned
	}

	rec := Record{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		DocumentType:  doc.Type,
		ProjectID:     doc.ProjectID,
		Role:          in.Role,
		SignerName:    in.SignerName,
		SignerTitle:   in.SignerTitle,
		ImageMimeType: img.MimeType,
		SignedVia:     via,
		CreatedBy:     createdBy,
		SignedAt:      s.now(),
	}
	rec.ImageKey = fmt.Sprintf("signatures/%s/%s/%s%s", doc.ProjectID, doc.ID, rec.ID, img.Ext())

	size, err := s.Store.SaveWithKey(ctx, rec.ImageKey, img.MimeType, bytes.NewReader(img.Data))
	if err != nil {
		return Outcome{}, fmt.Errorf("store signature image: %w", err)
	}
	rec.ImageSizeBytes = size

	if err := s.Repo.Create(ctx, rec); err != nil {
		s.removeImage(ctx, rec)
		return Outcome{}, err
	}
	metrics.IncSignaturesCreated()
	telemetry.Info("signature.created", map[string]any{
		"signature_id": rec.ID,
		"document_id":  rec.DocumentID,
		"project_id":   rec.ProjectID,
		"role":         string(rec.Role),
		"signed_via":   string(rec.SignedVia),
	})

	outcome := Outcome{Record: rec}
	outcome.FullySigned, outcome.MissingRoles, outcome.Notified = s.checkCompletion(ctx, doc)
	return outcome, nil
}

// checkCompletion re-evaluates the whole record set and, when the document
// is complete, notifies admins if this caller claims the guard. Errors here
// never fail the signature that triggered the check.
func (s *Service) checkCompletion(ctx context.Context, doc documents.Document) (bool, []Role, bool) {
	records, err := s.Repo.ListByDocument(ctx, doc.ID)
	if err != nil {
		telemetry.Error("signature.completion_check_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err,
		})
		return false, nil, false
	}
	missing := MissingRoles(records)
	if len(missing) > 0 {
		return false, missing, false
	}

	claimed, err := s.Documents.ClaimCompletionNotice(ctx, doc.ID)
	if err != nil {
		telemetry.Error("signature.completion_claim_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err,
		})
		return true, missing, false
	}
	if !claimed {
		return true, missing, false
	}

	// A delete that ran between the list and the claim found the guard unset
	// and left it alone, so the claim has to be checked against a fresh list.
	records, err = s.Repo.ListByDocument(ctx, doc.ID)
	if err == nil {
		missing = MissingRoles(records)
	}
	if err != nil || len(missing) > 0 {
		if releaseErr := s.Documents.ReleaseCompletionNotice(ctx, doc.ID); releaseErr != nil {
			telemetry.Error("signature.completion_release_failed", map[string]any{
				"document_id": doc.ID,
				"error":       releaseErr,
			})
		}
		if err != nil {
			telemetry.Error("signature.completion_check_failed", map[string]any{
				"document_id": doc.ID,
				"error":       err,
			})
			return false, nil, false
		}
		return false, missing, false
	}

	metrics.IncDocumentsFullySigned()
	telemetry.Info("document.fully_signed", map[string]any{
		"document_id":   doc.ID,
		"project_id":    doc.ProjectID,
		"document_type": string(doc.Type),
	})
	s.notifyFullySigned(ctx, doc)
	return true, missing, true
}

func (s *Service) notifyFullySigned(ctx context.Context, doc documents.Document) {
	kind := notifications.KindPayApplicationFullySigned
	if doc.Type == documents.TypeChangeOrder {
		kind = notifications.KindChangeOrderFullySigned
	}

	projectName := ""
	if project, err := s.Projects.Lookup(ctx, doc.ProjectID); err == nil {
		projectName = project.Name
	} else {
		telemetry.Warn("notification.project_lookup_failed", map[string]any{
			"project_id": doc.ProjectID,
			"error":      err,
		})
	}

	amount := ""
	if doc.AmountCents != nil {
		amount = documents.FormatAmount(*doc.AmountCents)
	}

	for _, email := range s.AdminEmails {
		notifications.Deliver(ctx, s.Notifier, notifications.Notification{
			Type:           kind,
			RecipientEmail: email,
			ProjectName:    projectName,
			ItemTitle:      doc.Title,
			ItemNumber:     doc.DisplayNumber(),
			Amount:         amount,
			ProjectID:      doc.ProjectID,
			DocumentID:     doc.ID,
		})
	}
}

// Delete removes a signature so the role can be signed again.
func (s *Service) Delete(ctx context.Context, userID, signatureID string) (Record, error) {
	rec, err := s.Repo.GetByID(ctx, signatureID)
	if err != nil {
		return Record{}, err
	}
	if err := s.Projects.RequireMember(ctx, rec.ProjectID, userID); err != nil {
		return Record{}, err
	}
	if err := s.Repo.Delete(ctx, signatureID); err != nil {
		return Record{}, err
	}
	metrics.IncSignaturesDeleted()
	s.removeImage(ctx, rec)

	// A deleted role always leaves the document incomplete.
	if err := s.Documents.ReleaseCompletionNotice(ctx, rec.DocumentID); err != nil && !errors.Is(err, documents.ErrNotFound) {
		telemetry.Error("signature.completion_release_failed", map[string]any{
			"document_id": rec.DocumentID,
			"error":       err,
		})
	}
	telemetry.Info("signature.deleted", map[string]any{
		"signature_id": rec.ID,
		"document_id":  rec.DocumentID,
		"role":         string(rec.Role),
	})
	return rec, nil
}

// OpenImage streams a signature's image to a project member. The caller
// closes the reader.
func (s *Service) OpenImage(ctx context.Context, userID, signatureID string) (Record, io.ReadCloser, error) {
	rec, err := s.Repo.GetByID(ctx, signatureID)
	if err != nil {
		return Record{}, nil, err
	}
	if err := s.Projects.RequireMember(ctx, rec.ProjectID, userID); err != nil {
		return Record{}, nil, err
	}
	rc, err := s.Store.Open(ctx, rec.ImageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Record{}, nil, ErrNotFound
		}
		return Record{}, nil, err
	}
	return rec, rc, nil
}

func (s *Service) removeImage(ctx context.Context, rec Record) {
	if err := s.Store.Delete(ctx, rec.ImageKey); err != nil {
		telemetry.Warn("signature.image_delete_failed", map[string]any{
			"signature_id": rec.ID,
			"image_key":    rec.ImageKey,
			"error":        err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
