package signatures

import "time"

type createSignatureRequest struct {
	Role          string  `json:"role"`
	SignerName    string  `json:"signerName"`
	SignerTitle   *string `json:"signerTitle"`
	SignatureData string  `json:"signatureData"`
}

// RecordResponse is the outward-facing representation of a signature.
type RecordResponse struct {
	SignatureID   string    `json:"signatureId"`
	DocumentID    string    `json:"documentId"`
	DocumentType  string    `json:"documentType"`
	ProjectID     string    `json:"projectId"`
	Role          string    `json:"role"`
	SignerName    string    `json:"signerName"`
	SignerTitle   *string   `json:"signerTitle,omitempty"`
	SignedVia     string    `json:"signedVia"`
	SignedAt      time.Time `json:"signedAt"`
	ImageMimeType string    `json:"imageMimeType"`
	ImageURL      string    `json:"imageUrl"`
}

// StatusResponse is a document's signatures plus completion state.
type StatusResponse struct {
	DocumentID   string           `json:"documentId"`
	FullySigned  bool             `json:"fullySigned"`
	MissingRoles []string         `json:"missingRoles"`
	Items        []RecordResponse `json:"items"`
}

type createSignatureResponse struct {
	Signature    RecordResponse `json:"signature"`
	FullySigned  bool           `json:"fullySigned"`
	MissingRoles []string       `json:"missingRoles"`
}

// ToResponse converts a record for JSON output.
func ToResponse(rec Record) RecordResponse {
	return RecordResponse{
		SignatureID:   rec.ID,
		DocumentID:    rec.DocumentID,
		DocumentType:  string(rec.DocumentType),
		ProjectID:     rec.ProjectID,
		Role:          string(rec.Role),
		SignerName:    rec.SignerName,
		SignerTitle:   rec.SignerTitle,
		SignedVia:     string(rec.SignedVia),
		SignedAt:      rec.SignedAt,
		ImageMimeType: rec.ImageMimeType,
		ImageURL:      "/api/v1/signatures/" + rec.ID + "/image",
	}
}

func roleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}
