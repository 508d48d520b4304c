package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter applies a token bucket per client IP. Idle buckets are
// evicted after limiterIdleTTL, and at most maxEntries IPs are tracked.
type IPRateLimiter struct {
	mu       sync.Mutex
	every    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewIPRateLimiterRPS allows rps sustained requests per second per IP with
// the given burst.
func NewIPRateLimiterRPS(rps float64, burst, maxEntries int) *IPRateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &IPRateLimiter{
		every:    rate.Limit(rps),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxEntries, nil, limiterIdleTTL),
	}
}

// Middleware rejects requests over the limit through reject. A nil reject
// answers with a bare 429.
func (rl *IPRateLimiter) Middleware(reject http.HandlerFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r.RemoteAddr)
			if ip == "" {
				ip = "unknown"
			}
			if !rl.limiter(ip).Allow() {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *IPRateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(rl.every, rl.burst)
	rl.limiters.Add(ip, l)
	return l
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
