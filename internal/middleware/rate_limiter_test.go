package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func serve(mw http.Handler, method, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRateLimiter_GlobalBurst(t *testing.T) {
	rl := NewRateLimiterWithLimits(10, 3, 10, 10)
	mw := rl.Middleware(okHandler())
	ip := "1.2.3.4:1234"

	paths := []string{"/weather", "/weather/refresh", "/weather"}
	for i, p := range paths {
		w := serve(mw, http.MethodGet, p, ip)
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d on request %d", w.Result().StatusCode, i+1)
		}
	}

	w := serve(mw, http.MethodGet, "/weather", ip)
	require.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode)
	resp := decodeError(t, w)
	assert.True(t, strings.Contains(resp["error"].(string), "Rate limit exceeded"))
	assert.Equal(t, "Too Many Requests (global limit)", resp["message"])

	// another client is unaffected
	w = serve(mw, http.MethodGet, "/weather", "5.6.7.8:1")
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestRateLimiter_PerRouteBurst(t *testing.T) {
	rl := NewRateLimiter()
	mw := rl.Middleware(okHandler())
	ip := "2.3.4.5:2345"

	// 2 requests to the same route allowed instantly (burst)
	for i := 0; i < 2; i++ {
		w := serve(mw, http.MethodPost, "/weather/refresh", ip)
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d on request %d", w.Result().StatusCode, i+1)
		}
	}
	w := serve(mw, http.MethodPost, "/weather/refresh", ip)
	require.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode)
	assert.Equal(t, "Too Many Requests (route limit)", decodeError(t, w)["message"])

	// a different route still has budget
	w = serve(mw, http.MethodGet, "/weather", ip)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestRateLimiter_ForwardedFor(t *testing.T) {
	rl := NewRateLimiterWithLimits(10, 1, 10, 10)
	mw := rl.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/weather", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	assert.Equal(t, "9.9.9.9", getIP(req))

	assert.Equal(t, http.StatusOK, serve(mw, http.MethodGet, "/weather", "9.9.9.9:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(mw, http.MethodGet, "/weather", "9.9.9.9:2").Code)
}

func TestRateLimiter_CleanupAndReset(t *testing.T) {
	rl := NewRateLimiterWithLimits(10, 1, 10, 1)
	mw := rl.Middleware(okHandler())
	serve(mw, http.MethodGet, "/weather", "3.3.3.3:1")
	assert.Equal(t, 1, rl.global.size())
	assert.Equal(t, 1, rl.route.size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.global.size())

	time.Sleep(5 * time.Millisecond)
	rl.Cleanup(time.Millisecond)
	assert.Equal(t, 0, rl.global.size())
	assert.Equal(t, 0, rl.route.size())

	serve(mw, http.MethodGet, "/weather", "3.3.3.3:1")
	rl.Reset()
	assert.Equal(t, http.StatusOK, serve(mw, http.MethodGet, "/weather", "3.3.3.3:1").Code)
}
