package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONFieldCombinesEmailAndIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Cliente@AssinaHub.com.br ","password":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "203.0.113.7:4455"

	key := KeyByIPAndJSONField("email")(c)
	if key != "cliente@assinahub.com.br|203.0.113.7" {
		t.Fatalf("key want cliente@assinahub.com.br|203.0.113.7 got %s", key)
	}

	// The login handler still needs to bind the same body.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("re-read body failed: %v", err)
	}
	if !strings.Contains(string(body), "Cliente@AssinaHub.com.br") {
		t.Fatalf("body should be restored after key extraction, got %s", string(body))
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "email=cliente"},
		{name: "field missing", body: `{"senha":"x"}`},
		{name: "field not string", body: `{"email":42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body))
			c.Request.RemoteAddr = "198.51.100.9:1234"

			if key := KeyByIPAndJSONField("email")(c); key != "198.51.100.9" {
				t.Fatalf("key want client ip got %s", key)
			}
		})
	}
}

func TestRateLimitMiddlewareDisabledWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rule := RateLimitRule{WindowSeconds: 60, MaxRequests: 1, BlockSeconds: 300}
	r := gin.New()
	r.Use(RateLimitMiddleware(nil, rule, KeyByIP))
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Repeated requests all pass: without a Redis client the throttle
	// is a no-op rather than a lockout.
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status want 200 got %d", i, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should reach the handler, got %s", i, w.Body.String())
		}
	}
}

func TestRateLimitMiddlewareSkipsZeroRules(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 0, MaxRequests: 0}, nil))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("zero-valued rule must not block, got %d %s", w.Code, w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(7), want: 7, ok: true},
		{name: "int", input: int(8), want: 8, ok: true},
		{name: "uint64", input: uint64(9), want: 9, ok: true},
		{name: "float64 truncates", input: float64(10.9), want: 10, ok: true},
		{name: "float32 truncates", input: float32(11.5), want: 11, ok: true},
		{name: "string rejected", input: "11", want: 0, ok: false},
		{name: "nil rejected", input: nil, want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
