package signrequests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/documents"
	"signing-backend/internal/signatures"
)

type publicEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func newPublicRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewPublicHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (int, publicEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var env publicEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return resp.Code, env
}

func TestPublicFetchEnvelope(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "5", "Added storefront glazing")
	r := newPublicRouter(f.svc)
	created := f.invite(t, signatures.RoleOwner, "owner@example.com")

	code, env := doJSON(t, r, http.MethodGet, "/api/v1/signature-request?token="+created.Token, nil)
	if code != http.StatusOK || env.Error != "" {
		t.Fatalf("expected 200 data, got %d %+v", code, env)
	}
	var details DetailsResponse
	if err := json.Unmarshal(env.Data, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Status != "pending" || details.Document.DisplayNumber != "CO-5" || details.Role != "owner" {
		t.Fatalf("unexpected details %+v", details)
	}
	if strings.Contains(string(env.Data), created.Request.TokenHash) {
		t.Fatalf("token hash must not leak")
	}

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/signature-request?token=nope", nil)
	if code != http.StatusBadRequest || env.Error != "invalid" {
		t.Fatalf("expected invalid, got %d %+v", code, env)
	}
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/signature-request?token="+strings.Repeat("A", 43), nil)
	if code != http.StatusNotFound || env.Error != "not_found" {
		t.Fatalf("expected not_found, got %d %+v", code, env)
	}

	f.clock.Advance(49 * time.Hour)
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/signature-request?token="+created.Token, nil)
	if code != http.StatusGone || env.Error != "expired" || len(env.Data) == 0 {
		t.Fatalf("expected expired with details, got %d %+v", code, env)
	}
}

func TestPublicSubmitFlow(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "5", "Scope")
	r := newPublicRouter(f.svc)
	created := f.invite(t, signatures.RoleArchitect, "arch@example.com")

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/submit-external-signature", map[string]any{
		"token":         created.Token,
		"signatureData": pngDataURL(),
		"signerName":    "",
	})
	if code != http.StatusBadRequest || env.Error != "invalid" || env.Message == "" {
		t.Fatalf("expected invalid with message, got %d %+v", code, env)
	}

	code, env = doJSON(t, r, http.MethodPost, "/api/v1/submit-external-signature", map[string]any{
		"token":         created.Token,
		"signatureData": pngDataURL(),
		"signerName":    "Dana Reyes",
		"signerTitle":   "Principal",
	})
	if code != http.StatusCreated || env.Error != "" {
		t.Fatalf("expected 201, got %d %+v", code, env)
	}
	var rec signatures.RecordResponse
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.Role != "architect" || rec.SignedVia != "external" || rec.SignerName != "Dana Reyes" {
		t.Fatalf("unexpected record %+v", rec)
	}

	code, env = doJSON(t, r, http.MethodPost, "/api/v1/submit-external-signature", map[string]any{
		"token":         created.Token,
		"signatureData": pngDataURL(),
		"signerName":    "Dana Reyes",
	})
	if code != http.StatusConflict || env.Error != "already_signed" {
		t.Fatalf("expected already_signed, got %d %+v", code, env)
	}

	cancelled := f.invite(t, signatures.RoleOwner, "owner@example.com")
	if _, err := f.svc.Cancel(context.Background(), memberID, cancelled.Request.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	code, env = doJSON(t, r, http.MethodPost, "/api/v1/submit-external-signature", map[string]any{
		"token":         cancelled.Token,
		"signatureData": pngDataURL(),
		"signerName":    "Olivia",
	})
	if code != http.StatusGone || env.Error != "cancelled" {
		t.Fatalf("expected cancelled, got %d %+v", code, env)
	}
}
