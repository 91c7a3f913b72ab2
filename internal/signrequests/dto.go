package signrequests

import (
	"time"

	"signing-backend/internal/documents"
)

type createRequestBody struct {
	Role           string  `json:"role"`
	RecipientEmail string  `json:"recipientEmail"`
	RecipientName  *string `json:"recipientName"`
}

type submitBody struct {
	Token         string  `json:"token"`
	SignatureData string  `json:"signatureData"`
	SignerName    string  `json:"signerName"`
	SignerTitle   *string `json:"signerTitle"`
}

// RequestResponse is the member-facing view of a request. The token hash is
// never exposed.
type RequestResponse struct {
	RequestID      string     `json:"requestId"`
	DocumentID     string     `json:"documentId"`
	ProjectID      string     `json:"projectId"`
	Role           string     `json:"role"`
	RecipientEmail string     `json:"recipientEmail"`
	RecipientName  *string    `json:"recipientName,omitempty"`
	RequestedBy    string     `json:"requestedBy"`
	Status         string     `json:"status"`
	SignatureID    *string    `json:"signatureId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
}

type createdResponse struct {
	Request    RequestResponse `json:"request"`
	SigningURL string          `json:"signingUrl"`
}

// DetailsResponse is the public view behind a signing link.
type DetailsResponse struct {
	RequestID      string           `json:"requestId"`
	Role           string           `json:"role"`
	RecipientEmail string           `json:"recipientEmail"`
	RecipientName  *string          `json:"recipientName,omitempty"`
	RequestedBy    requesterSummary `json:"requestedBy"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	ExpiresAt      time.Time        `json:"expiresAt"`
	SignedAt       *time.Time       `json:"signedAt,omitempty"`
	ProjectName    string           `json:"projectName"`
	Document       documentSummary  `json:"document"`
}

type requesterSummary struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type documentSummary struct {
	DocumentID    string `json:"documentId"`
	DocumentType  string `json:"documentType"`
	Number        string `json:"number"`
	DisplayNumber string `json:"displayNumber"`
	Title         string `json:"title"`
	Amount        string `json:"amount,omitempty"`
}

func toRequestResponse(req Request, now time.Time) RequestResponse {
	return RequestResponse{
		RequestID:      req.ID,
		DocumentID:     req.DocumentID,
		ProjectID:      req.ProjectID,
		Role:           string(req.Role),
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		RequestedBy:    req.RequestedBy,
		Status:         string(req.EffectiveStatus(now)),
		SignatureID:    req.SignatureID,
		CreatedAt:      req.CreatedAt,
		ExpiresAt:      req.ExpiresAt,
		SignedAt:       req.SignedAt,
		CancelledAt:    req.CancelledAt,
	}
}

func toDetailsResponse(d Details) DetailsResponse {
	amount := ""
	if d.Document.AmountCents != nil {
		amount = documents.FormatAmount(*d.Document.AmountCents)
	}
	return DetailsResponse{
		RequestID:      d.RequestID,
		Role:           string(d.Role),
		RecipientEmail: d.RecipientEmail,
		RecipientName:  d.RecipientName,
		RequestedBy:    requesterSummary{Name: d.RequesterName, Email: d.RequesterEmail},
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
		ExpiresAt:      d.ExpiresAt,
		SignedAt:       d.SignedAt,
		ProjectName:    d.ProjectName,
		Document: documentSummary{
			DocumentID:    d.Document.ID,
			DocumentType:  string(d.Document.Type),
			Number:        d.Document.Number,
			DisplayNumber: d.Document.DisplayNumber(),
			Title:         d.Document.Title,
			Amount:        amount,
		},
	}
}
