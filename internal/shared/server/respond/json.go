package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// DataEnvelope is the success shape of the public signing endpoints.
type DataEnvelope struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

// Data writes {"data": payload}.
func Data(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, DataEnvelope{Data: payload})
}
