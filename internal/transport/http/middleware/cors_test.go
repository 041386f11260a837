package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/api/auth/send-code", func(c *gin.Context) {
		c.Header("Retry-After", "42")
		c.Status(http.StatusTooManyRequests)
	})
	return router
}

func TestCORSPreflightAllowedOrigin(t *testing.T) {
	router := newCORSRouter("https://Shop.Example.com/")

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/send-code", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials for a listed origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != corsAllowMethods {
		t.Fatalf("unexpected allow-methods %q", got)
	}
}

func TestCORSExposesRetryAfter(t *testing.T) {
	router := newCORSRouter("https://shop.example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/send-code", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != corsExposeHeaders {
		t.Fatalf("expected Retry-After to be exposed, got %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	router := newCORSRouter("*")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/send-code", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("expected no credentials with wildcard, got %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	router := newCORSRouter("https://shop.example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/send-code", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the request itself to proceed, got %d", rr.Code)
	}
}
