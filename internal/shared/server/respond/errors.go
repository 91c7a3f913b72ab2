package respond

import (
	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// PublicErrorResponse is the flat error shape of the public signing
// endpoints. Data is set for terminal request states so the signing page can
// still show what the link was for.
type PublicErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	logError(c, status, code, message)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// PublicError sends {"error": code} with an optional message and data.
func PublicError(c *gin.Context, status int, code, message string, data interface{}) {
	logError(c, status, code, message)
	c.AbortWithStatusJSON(status, PublicErrorResponse{Error: code, Message: message, Data: data})
}

func logError(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if message != "" {
		fields["message"] = message
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)
}
