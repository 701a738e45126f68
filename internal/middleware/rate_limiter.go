package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/model"
	"golang.org/x/time/rate"
)

// visitor holds a limiter and the last time its key was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one limiter per key.
type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func newLimiterSet(perMinute float64, burst int) *limiterSet {
	return &limiterSet{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perMinute / 60.0),
		burst:    burst,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (s *limiterSet) prune(maxIdle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(s.visitors, key)
		}
	}
}

func (s *limiterSet) reset() {
	s.mu.Lock()
	s.visitors = make(map[string]*visitor)
	s.mu.Unlock()
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// RateLimiter enforces a per-IP limit and a tighter per-IP, per-route limit.
type RateLimiter struct {
	global *limiterSet
	route  *limiterSet
}

// NewRateLimiter builds a limiter from rate_limiter.* config. Rates are requests per minute.
func NewRateLimiter() *RateLimiter {
	gRate, gBurst := config.GetGlobalRateLimiterConfig()
	rRate, rBurst := config.GetRouteRateLimiterConfig()
	return NewRateLimiterWithLimits(gRate, gBurst, rRate, rBurst)
}

func NewRateLimiterWithLimits(globalPerMinute float64, globalBurst int, routePerMinute float64, routeBurst int) *RateLimiter {
	return &RateLimiter{
		global: newLimiterSet(globalPerMinute, globalBurst),
		route:  newLimiterSet(routePerMinute, routeBurst),
	}
}

// StartCleanup removes visitors idle for longer than the configured timeout until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	maxIdle := config.GetRateLimiterCleanupTimeout()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(maxIdle)
			}
		}
	}()
}

// Cleanup drops visitors not seen within maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.global.prune(maxIdle)
	rl.route.prune(maxIdle)
}

// Reset clears all visitor state. Used primarily for testing.
func (rl *RateLimiter) Reset() {
	rl.global.reset()
	rl.route.reset()
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// Middleware responds 429 with a JSON error once either limit is exceeded.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		if !rl.global.get(ip).Allow() {
			tooManyRequests(w, "Too Many Requests (global limit)", "Rate limit exceeded for this client")
			return
		}
		if !rl.route.get(ip + " " + r.URL.Path).Allow() {
			tooManyRequests(w, "Too Many Requests (route limit)", "Rate limit exceeded for this route")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, message, errMsg string) {
	config.GetLogger().Debugw("Rate limited", "reason", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse(message, errMsg))
}
