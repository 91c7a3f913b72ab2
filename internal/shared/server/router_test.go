package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"signing-backend/internal/shared/config"
	"signing-backend/internal/signrequests"
)

func newPublicRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	return NewRouter(RouterDeps{
		Config: config.Config{
			Env:                  "test",
			PublicRateLimitRPS:   0.001,
			PublicRateLimitBurst: 2,
			TrustedProxies:       trusted,
		},
		PublicSigning:      signrequests.NewPublicHandler(&signrequests.Service{Repo: signrequests.NewMemoryRepo()}),
		PublicSigningPaths: signrequests.PublicPaths,
	})
}

func countThrottled(r *gin.Engine, remoteAddr string, forwarded func(i int) string) int {
	throttled := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, apiPrefix+"/signature-request?token=unknown", nil)
		req.RemoteAddr = remoteAddr
		if xff := forwarded(i); xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	return throttled
}

func TestPublicRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	r := newPublicRouter(t, nil)

	got := countThrottled(r, "203.0.113.7:40000", func(i int) string {
		return fmt.Sprintf("198.51.100.%d", i+1)
	})
	if got != 8 {
		t.Fatalf("expected 8 throttled requests from one peer, got %d", got)
	}
}

func TestPublicRateLimitHonorsTrustedProxy(t *testing.T) {
	r := newPublicRouter(t, []string{"192.0.2.10"})

	got := countThrottled(r, "192.0.2.10:40000", func(i int) string {
		return fmt.Sprintf("198.51.100.%d", i+1)
	})
	if got != 0 {
		t.Fatalf("expected distinct forwarded clients to get their own buckets, got %d throttled", got)
	}
}
