// Package ratelimit throttles login attempts per client IP and per email.
//
// Counting is done by a Counter: the in-process Limiter for a single
// instance, or RedisLimiter when several instances share the load.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Counter counts hits per key inside a fixed window.
type Counter interface {
	// Allow records a hit and reports whether the key is still under its limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the key's window.
	Reset(ctx context.Context, key string) error
}

// Limiter is an in-process fixed-window Counter. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit hits per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow implements Counter.
func (l *Limiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Reset implements Counter.
func (l *Limiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
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

/*─────────────────────────────────────────────────────────────────────────────*
| LoginLimiter                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// LoginLimiter tracks both IP-based and email-based limits to stop
// distributed attacks as well as attacks on a single account.
type LoginLimiter struct {
	ip    Counter
	email Counter
	log   *zap.Logger
}

// NewLoginLimiter builds a limiter over the two counters.
func NewLoginLimiter(ip, email Counter, logger *zap.Logger) *LoginLimiter {
	return &LoginLimiter{ip: ip, email: email, log: logger}
}

// NewMemoryLoginLimiter uses in-process counters: 10 attempts per IP per
// minute, and maxAttempts per email per window.
func NewMemoryLoginLimiter(maxAttempts int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	return NewLoginLimiter(New(10, time.Minute), New(maxAttempts, window), logger)
}

// Check reports whether a login attempt may proceed and, if not, the
// message to show. Counter failures let the attempt through.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	ctx := r.Context()

	if ok := ll.allow(ctx, ll.ip, "ip:"+ClientIP(r)); !ok {
		return false, "Demasiadas tentativas. Aguarde um minuto e tente novamente."
	}

	if key := emailKey(email); key != "" {
		if ok := ll.allow(ctx, ll.email, "email:"+key); !ok {
			return false, "Demasiadas tentativas para esta conta. Aguarde alguns minutos."
		}
	}

	return true, ""
}

// ResetEmail clears the email window after a successful login.
func (ll *LoginLimiter) ResetEmail(ctx context.Context, email string) {
	key := emailKey(email)
	if key == "" {
		return
	}
	if err := ll.email.Reset(ctx, "email:"+key); err != nil {
		ll.log.Warn("login limiter reset failed", zap.Error(err))
	}
}

func (ll *LoginLimiter) allow(ctx context.Context, c Counter, key string) bool {
	ok, err := c.Allow(ctx, key)
	if err != nil {
		ll.log.Warn("login limiter unavailable; allowing attempt", zap.Error(err))
		return true
	}
	return ok
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
