package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), func(c *gin.Context) {
		c.Set(userIDKey, "google:7")
		c.Next()
	}, Logging())
	router.POST("/api/v1/signature-requests/:requestId/cancel", func(c *gin.Context) {
		c.Set(DocumentIDKey, "doc-1")
		c.Set(SignatureRequestIDKey, "req-1")
		c.Set(StatusTransitionKey, "pending->cancelled")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = origStdout
	}()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signature-requests/req-1/cancel", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read log output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "document_id", "signature_request_id", "duration_ms", "status", "status_transition"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "google:7" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["signature_request_id"] != "req-1" {
		t.Fatalf("unexpected signature_request_id: %v", payload["signature_request_id"])
	}
	if payload["status_transition"] != "pending->cancelled" {
		t.Fatalf("unexpected status_transition: %v", payload["status_transition"])
	}
	if payload["path"] != "/api/v1/signature-requests/:requestId/cancel" {
		t.Fatalf("expected route template path, got %v", payload["path"])
	}
}
