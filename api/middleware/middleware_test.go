package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/crawlduel/config"
)

func newProtectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingKey(t *testing.T) {
	r := newProtectedRouter(Auth([]string{"secret"}))

	if w := doGet(r, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidKey(t *testing.T) {
	r := newProtectedRouter(Auth([]string{"secret"}))

	w := doGet(r, map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ValidKeyHeaderStyles(t *testing.T) {
	r := newProtectedRouter(Auth([]string{"secret"}))

	if w := doGet(r, map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Errorf("X-API-Key style: status = %d, want 200", w.Code)
	}
	if w := doGet(r, map[string]string{"Authorization": "Bearer secret"}); w.Code != http.StatusOK {
		t.Errorf("Bearer style: status = %d, want 200", w.Code)
	}
}

func TestAuth_NoKeysConfiguredIsOpen(t *testing.T) {
	r := newProtectedRouter(Auth(nil))

	if w := doGet(r, nil); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := newProtectedRouter(RateLimit(config.RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
	}))

	for i := 0; i < 2; i++ {
		if w := doGet(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	if w := doGet(r, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("over-burst request: status = %d, want 429", w.Code)
	}
}
