package signrequests

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/server/middleware"
	"signing-backend/internal/shared/server/respond"
	"signing-backend/internal/signatures"
)

// Signature images arrive base64 encoded inside JSON.
const maxSubmitBody = 4 << 20

// Public error codes understood by the signing page.
const (
	codeInvalid       = "invalid"
	codeNotFound      = "not_found"
	codeExpired       = "expired"
	codeAlreadySigned = "already_signed"
	codeCancelled     = "cancelled"
	codeInternal      = "internal"
)

// PublicHandler serves the token-authenticated signing page endpoints.
type PublicHandler struct {
	Svc *Service
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(svc *Service) *PublicHandler {
	return &PublicHandler{Svc: svc}
}

// PublicPaths are the routes that skip session auth, relative to /api/v1.
var PublicPaths = []string{"/signature-request", "/submit-external-signature"}

// RegisterRoutes attaches the public routes to the router group.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(PublicPaths[0], h.fetch)
	rg.POST(PublicPaths[1], h.submit)
}

func (h *PublicHandler) fetch(c *gin.Context) {
	details, err := h.Svc.FetchByToken(c.Request.Context(), c.Query("token"))
	if details.RequestID != "" {
		c.Set(middleware.SignatureRequestIDKey, details.RequestID)
		c.Set(middleware.DocumentIDKey, details.Document.ID)
	}
	if err != nil {
		var data interface{}
		if details.RequestID != "" {
			data = toDetailsResponse(details)
		}
		writePublicError(c, err, data)
		return
	}
	respond.Data(c, http.StatusOK, toDetailsResponse(details))
}

func (h *PublicHandler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBody)

	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.PublicError(c, http.StatusBadRequest, codeInvalid, "invalid request body", nil)
		return
	}

	outcome, req, err := h.Svc.SubmitByToken(c.Request.Context(), body.Token, SubmitInput{
		SignerName:  body.SignerName,
		SignerTitle: body.SignerTitle,
		ImageData:   body.SignatureData,
	})
	if req.ID != "" {
		c.Set(middleware.SignatureRequestIDKey, req.ID)
		c.Set(middleware.DocumentIDKey, req.DocumentID)
	}
	if err != nil {
		writePublicError(c, err, nil)
		return
	}

	c.Set(middleware.SignatureIDKey, outcome.Record.ID)
	c.Set(middleware.StatusTransitionKey, "pending->signed")
	respond.Data(c, http.StatusCreated, signatures.ToResponse(outcome.Record))
}

func writePublicError(c *gin.Context, err error, data interface{}) {
	switch {
	case errors.Is(err, ErrInvalidToken):
		respond.PublicError(c, http.StatusBadRequest, codeInvalid, "invalid token", data)
	case errors.Is(err, ErrInvalidInput):
		respond.PublicError(c, http.StatusBadRequest, codeInvalid, err.Error(), data)
	case errors.Is(err, ErrNotFound):
		respond.PublicError(c, http.StatusNotFound, codeNotFound, "", data)
	case errors.Is(err, ErrExpired):
		respond.PublicError(c, http.StatusGone, codeExpired, "", data)
	case errors.Is(err, ErrCancelled):
		respond.PublicError(c, http.StatusGone, codeCancelled, "", data)
	case errors.Is(err, ErrAlreadySigned), errors.Is(err, ErrRoleAlreadySigned):
		respond.PublicError(c, http.StatusConflict, codeAlreadySigned, "", data)
	default:
		respond.PublicError(c, http.StatusInternalServerError, codeInternal, "", nil)
	}
}
