package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can be joined to domain rows.
const (
	DocumentIDKey         = "documentId"
	SignatureIDKey        = "signatureId"
	SignatureRequestIDKey = "signatureRequestId"
	StatusTransitionKey   = "statusTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		telemetry.Info("request.complete", map[string]any{
			"request_id":           RequestIDFromContext(c),
			"method":               c.Request.Method,
			"path":                 path,
			"status":               c.Writer.Status(),
			"status_transition":    c.GetString(StatusTransitionKey),
			"duration_ms":          float64(latency.Microseconds()) / 1000.0,
			"user_id":              UserIDFromContext(c),
			"document_id":          c.GetString(DocumentIDKey),
			"signature_id":         c.GetString(SignatureIDKey),
			"signature_request_id": c.GetString(SignatureRequestIDKey),
			"client_ip":            c.ClientIP(),
			"user_agent":           c.Request.UserAgent(),
		})
	}
}
