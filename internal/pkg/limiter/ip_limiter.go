/*
Package limiter provides per-IP request rate limiting.

Each client IP gets its own token bucket (rate.Limiter). A background
goroutine periodically drops buckets that have refilled completely, so the
map does not grow with every IP ever seen.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/resp"
)

const cleanupInterval = 3 * time.Minute

// IPRateLimiter maps client IP addresses to token buckets sharing one
// rate and burst configuration.
type IPRateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	b       int
}

// NewIPRateLimiter returns a limiter allowing r events per second with
// burst capacity b per IP, and starts the idle-bucket cleanup goroutine.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}

	go l.cleanupIdle()

	return l
}

// GetLimiter returns the bucket for ip, creating it on first sight.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	bucket, ok := l.buckets[ip]
	l.mu.RUnlock()

	if ok {
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, ok = l.buckets[ip]; !ok {
		bucket = rate.NewLimiter(l.r, l.b)
		l.buckets[ip] = bucket
	}

	return bucket
}

// cleanupIdle removes buckets whose tokens have fully replenished; those
// IPs have been quiet for at least a full refill period.
func (l *IPRateLimiter) cleanupIdle() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		removed := 0
		for ip, bucket := range l.buckets {
			if bucket.TokensAt(time.Now()) >= float64(bucket.Burst()) {
				delete(l.buckets, ip)
				removed++
			}
		}
		remaining := len(l.buckets)
		l.mu.Unlock()

		logx.Info("Rate limiter cleanup finished", "removed", removed, "remaining", remaining)
	}
}

// Allow reports whether a request from addr (host:port or bare IP) may
// proceed under the per-IP bucket.
func (l *IPRateLimiter) Allow(addr string) bool {
	return l.GetLimiter(clientIP(addr)).Allow()
}

// Middleware wraps next with a per-IP rate check, responding with the
// coded 429 error when the bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.RemoteAddr) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(addr string) string {
	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		ip = addr
	}
	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}
