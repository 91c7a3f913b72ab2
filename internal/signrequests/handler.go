package signrequests

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
	"signing-backend/internal/signatures"
)

// Handler serves the member-facing request endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches request routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:documentId/signature-requests", h.list)
	rg.POST("/documents/:documentId/signature-requests", h.create)
	rg.POST("/signature-requests/:requestId/cancel", h.cancel)
}

func (h *Handler) create(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set(middleware.DocumentIDKey, documentID)

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	by := Requester{
		UserID: middleware.UserIDFromContext(c),
		Name:   middleware.UserNameFromContext(c),
		Email:  middleware.UserEmailFromContext(c),
	}
	created, err := h.Svc.Create(c.Request.Context(), by, documentID, CreateInput{
		Role:           signatures.Role(body.Role),
		RecipientEmail: body.RecipientEmail,
		RecipientName:  body.RecipientName,
	})
	if err != nil {
		writeError(c, err, "failed to create signature request")
		return
	}

	c.Set(middleware.SignatureRequestIDKey, created.Request.ID)
	c.Set(middleware.StatusTransitionKey, "->pending")
	respond.JSON(c, http.StatusCreated, createdResponse{
		Request:    toRequestResponse(created.Request, h.Svc.now()),
		SigningURL: created.SigningURL,
	})
}

func (h *Handler) list(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set(middleware.DocumentIDKey, documentID)

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		writeError(c, err, "failed to list signature requests")
		return
	}
	now := h.Svc.now()
	resp := make([]RequestResponse, 0, len(items))
	for _, req := range items {
		resp = append(resp, toRequestResponse(req, now))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": resp})
}

func (h *Handler) cancel(c *gin.Context) {
	requestID := c.Param("requestId")
	c.Set(middleware.SignatureRequestIDKey, requestID)

	req, err := h.Svc.Cancel(c.Request.Context(), middleware.UserIDFromContext(c), requestID)
	if err != nil {
		writeError(c, err, "failed to cancel signature request")
		return
	}
	c.Set(middleware.DocumentIDKey, req.DocumentID)
	c.Set(middleware.StatusTransitionKey, "->cancelled")
	respond.JSON(c, http.StatusOK, toRequestResponse(req, h.Svc.now()))
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "signature request not found", nil)
	case errors.Is(err, ErrAlreadySigned):
		respond.Error(c, http.StatusConflict, "already_signed", "signature request already signed", nil)
	default:
		signatures.WriteError(c, err, fallback)
	}
}
