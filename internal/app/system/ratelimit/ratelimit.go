// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket per key. limit requests are allowed in a burst
// and the bucket refills at limit per period. Safe for concurrent use.
type Limiter struct {
	limiters sync.Map // key -> *entry
	every    rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	once     sync.Once
}

type entry struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	seen    time.Time
}

// New creates a limiter allowing limit requests per period for each key.
// Buckets idle for two periods are dropped.
func New(limit int, period time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		every: rate.Every(period / time.Duration(limit)),
		burst: limit,
		idle:  2 * period,
		stop:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *Limiter) get(key string) *entry {
	if v, ok := l.limiters.Load(key); ok {
		e := v.(*entry)
		e.touch()
		return e
	}
	e := &entry{limiter: rate.NewLimiter(l.every, l.burst), seen: time.Now()}
	actual, _ := l.limiters.LoadOrStore(key, e)
	return actual.(*entry)
}

func (e *entry) touch() {
	e.mu.Lock()
	e.seen = time.Now()
	e.mu.Unlock()
}

func (e *entry) lastSeen() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seen
}

// Allow reports whether a request for key may proceed, consuming a token.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).limiter.Allow()
}

// Remaining returns the whole tokens left for key.
func (l *Limiter) Remaining(key string) int {
	v, ok := l.limiters.Load(key)
	if !ok {
		return l.burst
	}
	n := int(v.(*entry).limiter.Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(key string) {
	l.limiters.Delete(key)
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.limiters.Range(func(k, v any) bool {
				if now.Sub(v.(*entry).lastSeen()) > l.idle {
					l.limiters.Delete(k)
				}
				return true
			})
		}
	}
}

// Middleware rejects requests over the per-IP limit with 429. Allowed
// requests carry X-RateLimit-Remaining.
func (l *Limiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !l.Allow(ip) {
				logger.Warn("rate limit exceeded",
					zap.String("client_ip", ip),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(int(l.retryAfter().Seconds())))
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.Remaining(ip)))
			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) retryAfter() time.Duration {
	d := time.Duration(float64(time.Second) / float64(l.every))
	if d < time.Second {
		return time.Second
	}
	return d
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter tracks sign-in attempts per IP and per email, so neither a
// single address nor a single account can be hammered.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows perMinute attempts per IP per minute and half that
// (at least one) per email per five minutes.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute < 1 {
		perMinute = 10
	}
	return &LoginLimiter{
		ipLimiter:    New(perMinute, time.Minute),
		emailLimiter: New(max(perMinute/2, 1), 5*time.Minute),
	}
}

// NewRegisterLimiter allows perMinute sign-ups per IP every ten minutes.
// Values below one fall back to 10.
func NewRegisterLimiter(perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 10
	}
	return New(perMinute, 10*time.Minute)
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the rate limit for a specific email after successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.emailLimiter.Reset(key)
	}
}

// Close stops both cleanup goroutines.
func (ll *LoginLimiter) Close() {
	ll.ipLimiter.Close()
	ll.emailLimiter.Close()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
