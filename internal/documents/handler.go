package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/projects"
	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/projects/:projectId/documents", h.create)
	rg.GET("/projects/:projectId/documents", h.list)
	rg.GET("/documents/:documentId", h.get)
}

func (h *Handler) create(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("projectId"), CreateInput{
		Type:        Type(req.DocumentType),
		Number:      req.Number,
		Title:       req.Title,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		WriteError(c, err, "failed to create document")
		return
	}
	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set(middleware.DocumentIDKey, documentID)

	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		WriteError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.ListByProject(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("projectId"), limit, offset)
	if err != nil {
		WriteError(c, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": resp})
}

// WriteError maps document and membership errors onto the error envelope.
func WriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	default:
		projects.WriteError(c, err, fallback)
	}
}
