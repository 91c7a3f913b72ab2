package signrequests

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
	"signing-backend/internal/shared/metrics"
	"signing-backend/internal/shared/telemetry"
	"signing-backend/internal/shared/util"
	"signing-backend/internal/signatures"
)

// DefaultTTL is how long a signing link stays valid when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Requester identifies the member sending an invite.
type Requester struct {
	UserID string
	Name   string
	Email  string
}

// CreateInput describes a new invite.
type CreateInput struct {
	Role           signatures.Role
	RecipientEmail string
	RecipientName  *string
}

// Created is a stored request plus the bearer token, which is only
// available at creation time.
type Created struct {
	Request    Request
	Token      string
	SigningURL string
}

// SubmitInput is what the external signer sends. The role comes from the
// request, never from the submitter.
type SubmitInput struct {
	SignerName  string
	SignerTitle *string
	ImageData   string
}

// Details is what the signing page may show for a token: this request and
// the document it is for, nothing else.
type Details struct {
	RequestID      string
	Role           signatures.Role
	RecipientEmail string
	RecipientName  *string
	RequesterName  string
	RequesterEmail string
	Status         Status
	CreatedAt      time.Time
	ExpiresAt      time.Time
	SignedAt       *time.Time
	ProjectName    string
	Document       documents.Document
}

// Service contains the external signing workflow.
type Service struct {
	Repo           Repo
	Signatures     *signatures.Service
	Documents      *documents.Service
	Projects       *projects.Service
	Notifier       notifications.Dispatcher
	TTL            time.Duration
	SigningBaseURL string
	Now            func() time.Time
}

// Create issues a token for role on the document and emails the link to the
// recipient. Email failures are logged; the request still exists.
func (s *Service) Create(ctx context.Context, by Requester, documentID string, in CreateInput) (Created, error) {
	if !in.Role.Valid() {
		return Created{}, fmt.Errorf("%w: role must be contractor, architect or owner", ErrInvalidInput)
	}
	email, err := util.NormalizeEmail(in.RecipientEmail)
	if err != nil {
		return Created{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	doc, err := s.Documents.Get(ctx, by.UserID, documentID)
	if err != nil {
		return Created{}, err
	}
	signed, err := s.Signatures.RoleSigned(ctx, doc.ID, in.Role)
	if err != nil {
		return Created{}, err
	}
	if signed {
		return Created{}, ErrRoleAlreadySigned
	}

	token, err := util.NewToken()
	if err != nil {
		return Created{}, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	req := Request{
		ID:             uuid.NewString(),
		TokenHash:      util.HashToken(token),
		DocumentID:     doc.ID,
		ProjectID:      doc.ProjectID,
		Role:           in.Role,
		RecipientEmail: email,
		RecipientName:  util.OptionalString(in.RecipientName),
		RequestedBy:    by.UserID,
		RequesterName:  strings.TrimSpace(by.Name),
		RequesterEmail: strings.TrimSpace(by.Email),
		Status:         StatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl()),
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return Created{}, err
	}
	metrics.IncSignatureRequestsCreated()
	telemetry.Info("signature_request.created", map[string]any{
		"signature_request_id": req.ID,
		"document_id":          req.DocumentID,
		"role":                 string(req.Role),
		"expires_at":           req.ExpiresAt,
	})

	created := Created{Request: req, Token: token, SigningURL: s.signingURL(token)}
	s.notifyRecipient(ctx, doc, created)
	return created, nil
}

func (s *Service) notifyRecipient(ctx context.Context, doc documents.Document, created Created) {
	req := created.Request
	projectName := ""
	if project, err := s.Projects.Lookup(ctx, doc.ProjectID); err == nil {
		projectName = project.Name
	}
	amount := ""
	if doc.AmountCents != nil {
		amount = documents.FormatAmount(*doc.AmountCents)
	}
	recipientName := ""
	if req.RecipientName != nil {
		recipientName = *req.RecipientName
	}
	requestedBy := req.RequesterName
	if requestedBy == "" {
		requestedBy = req.RequesterEmail
	}
	expiresAt := req.ExpiresAt
	notifications.Deliver(ctx, s.Notifier, notifications.Notification{
		Type:           notifications.KindSignatureRequested,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  recipientName,
		ProjectName:    projectName,
		ItemTitle:      doc.Title,
		ItemNumber:     doc.DisplayNumber(),
		Amount:         amount,
		ProjectID:      doc.ProjectID,
		DocumentID:     doc.ID,
		SignerRole:     string(req.Role),
		RequestedBy:    requestedBy,
		SigningURL:     created.SigningURL,
		ExpiresAt:      &expiresAt,
	})
}

// List returns a document's requests for a project member.
func (s *Service) List(ctx context.Context, userID, documentID string) ([]Request, error) {
	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListByDocument(ctx, doc.ID)
}

// Cancel withdraws a request. Cancelling a cancelled request is a no-op and
// a signed request cannot be cancelled. A pending request past its deadline
// may still be cancelled.
func (s *Service) Cancel(ctx context.Context, userID, requestID string) (Request, error) {
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := s.Projects.RequireMember(ctx, req.ProjectID, userID); err != nil {
		return Request{}, err
	}
	if _, err := next(req.Status, actionCancel); err != nil {
		return Request{}, err
	}
	if req.Status == StatusCancelled {
		return req, nil
	}

	cancelled, err := s.Repo.Cancel(ctx, req.ID, s.now())
	if err != nil {
		return Request{}, err
	}
	latest, err := s.Repo.GetByID(ctx, req.ID)
	if err != nil {
		return Request{}, err
	}
	if !cancelled {
		// Lost a race; report the state that won.
		if latest.Status == StatusCancelled {
			return latest, nil
		}
		return Request{}, statusError(latest.Status)
	}
	metrics.IncSignatureRequestsCancelled()
	telemetry.Info("signature_request.cancelled", map[string]any{
		"signature_request_id": latest.ID,
		"document_id":          latest.DocumentID,
		"by":                   userID,
	})
	return latest, nil
}

// FetchByToken resolves a signing link. For signed, cancelled and expired
// requests the details are returned together with the matching error so the
// page can explain what happened.
func (s *Service) FetchByToken(ctx context.Context, token string) (Details, error) {
	req, err := s.lookupToken(ctx, token)
	if err != nil {
		return Details{}, err
	}
	details, err := s.details(ctx, req)
	if err != nil {
		return Details{}, err
	}
	return details, statusError(details.Status)
}

// SubmitByToken records the external signer's signature. Checks run in a
// fixed order: unknown token, cancelled, signed, expired, then the payload.
func (s *Service) SubmitByToken(ctx context.Context, token string, in SubmitInput) (signatures.Outcome, Request, error) {
	req, err := s.lookupToken(ctx, token)
	if err != nil {
		return signatures.Outcome{}, Request{}, err
	}
	now := s.now()
	if err := checkSignable(req, now); err != nil {
		s.rejected(req, err)
		return signatures.Outcome{}, req, err
	}

	createIn := signatures.CreateInput{
		Role:        req.Role,
		SignerName:  in.SignerName,
		SignerTitle: in.SignerTitle,
		ImageData:   in.ImageData,
	}
	if _, _, err := signatures.ValidateInput(createIn); err != nil {
		s.rejected(req, err)
		return signatures.Outcome{}, req, err
	}

	doc, err := s.Documents.Lookup(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return signatures.Outcome{}, req, ErrNotFound
		}
		return signatures.Outcome{}, req, err
	}

	claimed, err := s.Repo.ClaimForSigning(ctx, req.ID, now)
	if err != nil {
		return signatures.Outcome{}, req, err
	}
	if !claimed {
		latest, err := s.Repo.GetByID(ctx, req.ID)
		if err != nil {
			return signatures.Outcome{}, req, err
		}
		err = checkSignable(latest, now)
		if err == nil {
			err = ErrExpired
		}
		s.rejected(latest, err)
		return signatures.Outcome{}, latest, err
	}

	outcome, err := s.Signatures.CreateExternal(ctx, doc, req.ID, createIn)
	if err != nil {
		if releaseErr := s.Repo.ReleaseClaim(ctx, req.ID); releaseErr != nil {
			telemetry.Error("signature_request.release_failed", map[string]any{
				"signature_request_id": req.ID,
				"error":                releaseErr,
			})
		}
		s.rejected(req, err)
		return signatures.Outcome{}, req, err
	}

	if err := s.Repo.AttachSignature(ctx, req.ID, outcome.Record.ID); err != nil {
		telemetry.Error("signature_request.attach_failed", map[string]any{
			"signature_request_id": req.ID,
			"signature_id":         outcome.Record.ID,
			"error":                err,
		})
	}
	signatureID := outcome.Record.ID
	req.Status = StatusSigned
	req.SignedAt = &now
	req.SignatureID = &signatureID

	metrics.IncExternalSubmits()
	telemetry.Info("signature_request.signed", map[string]any{
		"signature_request_id": req.ID,
		"signature_id":         signatureID,
		"document_id":          req.DocumentID,
		"role":                 string(req.Role),
	})
	return outcome, req, nil
}

func (s *Service) lookupToken(ctx context.Context, token string) (Request, error) {
	token = strings.TrimSpace(token)
	if !util.ValidTokenFormat(token) {
		return Request{}, ErrInvalidToken
	}
	return s.Repo.GetByTokenHash(ctx, util.HashToken(token))
}

func (s *Service) details(ctx context.Context, req Request) (Details, error) {
	doc, err := s.Documents.Lookup(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return Details{}, ErrNotFound
		}
		return Details{}, err
	}
	projectName := ""
	if project, err := s.Projects.Lookup(ctx, req.ProjectID); err == nil {
		projectName = project.Name
	}
	return Details{
		RequestID:      req.ID,
		Role:           req.Role,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		Status:         req.EffectiveStatus(s.now()),
		CreatedAt:      req.CreatedAt,
		ExpiresAt:      req.ExpiresAt,
		SignedAt:       req.SignedAt,
		ProjectName:    projectName,
		Document:       doc,
	}, nil
}

func (s *Service) rejected(req Request, err error) {
	metrics.IncExternalSubmitsRejected()
	telemetry.Warn("signature_request.submit_rejected", map[string]any{
		"signature_request_id": req.ID,
		"document_id":          req.DocumentID,
		"error":                err,
	})
}

func (s *Service) signingURL(token string) string {
	base := strings.TrimSpace(s.SigningBaseURL)
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
