package signatures

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/documents"
	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
	"signing-backend/internal/shared/telemetry"
)

// Request bodies carry a base64 image, so allow headroom over MaxImageBytes.
const maxRequestBody = 4 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches signature routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:documentId/signatures", h.list)
	rg.POST("/documents/:documentId/signatures", h.create)
	rg.DELETE("/signatures/:signatureId", h.delete)
	rg.GET("/signatures/:signatureId/image", h.image)
}

func (h *Handler) list(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set(middleware.DocumentIDKey, documentID)

	status, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		WriteError(c, err, "failed to list signatures")
		return
	}

	items := make([]RecordResponse, 0, len(status.Records))
	for _, rec := range status.Records {
		items = append(items, ToResponse(rec))
	}
	respond.JSON(c, http.StatusOK, StatusResponse{
		DocumentID:   status.Document.ID,
		FullySigned:  status.FullySigned,
		MissingRoles: roleStrings(status.MissingRoles),
		Items:        items,
	})
}

func (h *Handler) create(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set(middleware.DocumentIDKey, documentID)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)

	var req createSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	outcome, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), documentID, CreateInput{
		Role:        Role(req.Role),
		SignerName:  req.SignerName,
		SignerTitle: req.SignerTitle,
		ImageData:   req.SignatureData,
	})
	if err != nil {
		WriteError(c, err, "failed to create signature")
		return
	}

	c.Set(middleware.SignatureIDKey, outcome.Record.ID)
	if outcome.Notified {
		c.Set(middleware.StatusTransitionKey, "fully_signed")
	}
	respond.JSON(c, http.StatusCreated, createSignatureResponse{
		Signature:    ToResponse(outcome.Record),
		FullySigned:  outcome.FullySigned,
		MissingRoles: roleStrings(outcome.MissingRoles),
	})
}

func (h *Handler) delete(c *gin.Context) {
	signatureID := c.Param("signatureId")
	c.Set(middleware.SignatureIDKey, signatureID)

	rec, err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), signatureID)
	if err != nil {
		WriteError(c, err, "failed to delete signature")
		return
	}
	c.Set(middleware.DocumentIDKey, rec.DocumentID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) image(c *gin.Context) {
	signatureID := c.Param("signatureId")
	c.Set(middleware.SignatureIDKey, signatureID)

	rec, rc, err := h.Svc.OpenImage(c.Request.Context(), middleware.UserIDFromContext(c), signatureID)
	if err != nil {
		WriteError(c, err, "failed to load signature image")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", rec.ImageMimeType)
	if rec.ImageSizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(rec.ImageSizeBytes, 10))
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("signature.image_stream_failed", map[string]any{
			"signature_id": signatureID,
			"error":        err,
		})
	}
}

// WriteError maps signature, document and membership errors onto the error
// envelope.
func WriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrRoleAlreadySigned):
		respond.Error(c, http.StatusConflict, "role_already_signed", "this role has already signed the document", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "signature not found", nil)
	default:
		documents.WriteError(c, err, fallback)
	}
}
