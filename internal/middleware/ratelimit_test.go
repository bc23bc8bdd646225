package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// ---------------------------------------------------------------------------
// Config constructors
// ---------------------------------------------------------------------------

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerMinute != 200 {
		t.Errorf("RequestsPerMinute = %d, want 200", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 50 {
		t.Errorf("BurstSize = %d, want 50", cfg.BurstSize)
	}
}

func TestAuthRateLimitConfig(t *testing.T) {
	cfg := AuthRateLimitConfig()
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 5 {
		t.Errorf("BurstSize = %d, want 5", cfg.BurstSize)
	}
}

// ---------------------------------------------------------------------------
// RateLimiter.Allow
// ---------------------------------------------------------------------------

func newTestLimiter(t *testing.T, rpm, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour, // don't clean up during tests
	})
	t.Cleanup(rl.Stop)
	return rl
}

func TestAllow_BurstThenDeny(t *testing.T) {
	rl := newTestLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("request beyond burst was allowed")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(t, 60, 1)

	if !rl.Allow("client-a") {
		t.Fatal("first request for client-a denied")
	}
	if rl.Allow("client-a") {
		t.Error("second request for client-a allowed with burst=1")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b was affected by client-a's bucket")
	}
}

func TestRemainingTokens_FreshClient(t *testing.T) {
	rl := newTestLimiter(t, 60, 5)
	if got := rl.RemainingTokens("unseen"); got != 5 {
		t.Errorf("RemainingTokens(unseen) = %d, want 5", got)
	}
}

// ---------------------------------------------------------------------------
// RateLimit middleware
// ---------------------------------------------------------------------------

func newRateLimitRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(rl))
	r.POST("/admin/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit_Returns429WhenExhausted(t *testing.T) {
	rl := newTestLimiter(t, 1, 1)
	r := newRateLimitRouter(rl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
}

func TestRateLimit_SetsLimitHeaders(t *testing.T) {
	rl := newTestLimiter(t, 10, 5)
	r := newRateLimitRouter(rl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", nil))

	if w.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("X-RateLimit-Remaining header not set")
	}
}

func TestRateLimitKey_PrefersAdminID(t *testing.T) {
	rl := newTestLimiter(t, 60, 1)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(AdminIDKey, "adm-1")
	})
	var key string
	r.Use(func(c *gin.Context) {
		key = rateLimitKey(c)
	})
	r.Use(RateLimit(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if key != "admin:adm-1" {
		t.Errorf("rateLimitKey = %q, want admin:adm-1", key)
	}
}
