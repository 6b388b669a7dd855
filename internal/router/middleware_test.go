package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assinahub/assinahub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestResolveAllowedOrigin(t *testing.T) {
	storefront := "https://app.assinahub.com.br"
	backoffice := "https://admin.assinahub.com.br"

	if got := resolveAllowedOrigin(storefront, []string{"*"}, false); got != "*" {
		t.Fatalf("wildcard without credentials want *, got %s", got)
	}
	if got := resolveAllowedOrigin(storefront, []string{"*"}, true); got != storefront {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}
	if got := resolveAllowedOrigin(storefront, []string{storefront, backoffice}, false); got != storefront {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}
	// Origin comparison ignores case.
	if got := resolveAllowedOrigin("https://APP.assinahub.com.br", []string{storefront}, false); got == "" {
		t.Fatalf("origin match should be case-insensitive")
	}
	if got := resolveAllowedOrigin("https://evil.example.com", []string{storefront}, false); got != "" {
		t.Fatalf("unmatched origin want empty, got %s", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins:   []string{"https://app.assinahub.com.br"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.POST("/api/v1/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "https://app.assinahub.com.br")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.assinahub.com.br" {
		t.Fatalf("allow-origin want storefront origin got %s", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("allow-credentials header missing")
	}
	if w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("max-age want 600 got %s", w.Header().Get("Access-Control-Max-Age"))
	}
}

func TestRequestIDPropagatesAndGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "ah-42")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "ah-42" {
		t.Fatalf("incoming request id should be echoed, got %s", w.Header().Get(requestIDHeader))
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body failed: %v", err)
	}
	if body["request_id"] != "ah-42" {
		t.Fatalf("context request id want ah-42 got %s", body["request_id"])
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request without id should get a generated one")
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope failed: %v", err)
	}
	return resp.StatusCode
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/admin/plans", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/plans", nil))

	if got := decodeEnvelope(t, w); got != 401 {
		t.Fatalf("status_code want 401 got %d", got)
	}
}

func TestUserJWTAuthMiddlewareRejectsBadHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware("segredo-de-teste", nil))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// No Authorization header at all. The nil repo path also yields
	// 401, so both missing-header and missing-repo refuse the request.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if got := decodeEnvelope(t, w); got != 401 {
		t.Fatalf("missing header status_code want 401 got %d", got)
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w2, req)
	if got := decodeEnvelope(t, w2); got != 401 {
		t.Fatalf("non-bearer header status_code want 401 got %d", got)
	}
}

func TestIssuedAfterInvalidBefore(t *testing.T) {
	now := time.Now()
	issued := jwt.NewNumericDate(now)

	if !isIssuedAfterInvalidBefore(issued, nil) {
		t.Fatalf("nil invalid-before should accept any token")
	}
	past := now.Add(-time.Hour)
	if !isIssuedAfterInvalidBefore(issued, &past) {
		t.Fatalf("token issued after the cut should pass")
	}
	future := now.Add(time.Hour)
	if isIssuedAfterInvalidBefore(issued, &future) {
		t.Fatalf("token issued before the cut should be revoked")
	}
	if isIssuedAfterInvalidBefore(nil, &past) {
		t.Fatalf("token without iat cannot pass a revocation cut")
	}

	if !isIssuedAfterInvalidBeforeUnix(issued, 0) {
		t.Fatalf("zero unix cut should accept any token")
	}
	if isIssuedAfterInvalidBeforeUnix(issued, future.Unix()) {
		t.Fatalf("unix cut in the future should revoke the token")
	}
}

func TestIsActiveUserStatus(t *testing.T) {
	if !isActiveUserStatus("active") || !isActiveUserStatus(" ACTIVE ") {
		t.Fatalf("active status should match ignoring case and spaces")
	}
	if isActiveUserStatus("disabled") || isActiveUserStatus("anonymized") || isActiveUserStatus("") {
		t.Fatalf("non-active statuses must not authenticate")
	}
}
