package documents

import "time"

type createDocumentRequest struct {
	DocumentType string `json:"documentType"`
	Number       string `json:"number"`
	Title        string `json:"title"`
	AmountCents  *int64 `json:"amountCents"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID    string     `json:"documentId"`
	ProjectID     string     `json:"projectId"`
	DocumentType  string     `json:"documentType"`
	Number        string     `json:"number"`
	DisplayNumber string     `json:"displayNumber"`
	Title         string     `json:"title"`
	AmountCents   *int64     `json:"amountCents,omitempty"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	NotifiedAt    *time.Time `json:"fullySignedNotifiedAt,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:    doc.ID,
		ProjectID:     doc.ProjectID,
		DocumentType:  string(doc.Type),
		Number:        doc.Number,
		DisplayNumber: doc.DisplayNumber(),
		Title:         doc.Title,
		AmountCents:   doc.AmountCents,
		CreatedBy:     doc.CreatedBy,
		CreatedAt:     doc.CreatedAt,
		NotifiedAt:    doc.FullySignedNotifiedAt,
	}
}
