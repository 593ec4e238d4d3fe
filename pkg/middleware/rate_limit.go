package middleware

import (
	"net"
	"net/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
)

const CodeRateLimited = apperrors.CodeRateLimited

// ClientKeyFunc names the caller a request is charged to. An empty key is never limited.
type ClientKeyFunc func(r *http.Request) string

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client. Buckets refill at requests/window and hold
// at most requests tokens, so an idle client can burst a full window at once.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	window   time.Duration
	keyFunc  ClientKeyFunc
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(requests int, window time.Duration, keyFunc ClientKeyFunc, log *logger.Logger, m *metrics.Metrics) *RateLimiter {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	limit := rate.Inf
	if requests > 0 && window > 0 {
		limit = rate.Limit(float64(requests) / window.Seconds())
	}

	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   max(requests, 1),
		window:  window,
		keyFunc: keyFunc,
		log:     log,
		metrics: m,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(max(rl.window, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.stopCh:
			return
		}
	}
}

// prune drops clients idle for longer than a window; their bucket would be full again anyway.
func (rl *RateLimiter) prune() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.window {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.keyFunc(r)

			if !limiter.Allow(key) {
				limiter.metrics.RateLimited()
				rejectRateLimited(w, limiter, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rejectRateLimited(w http.ResponseWriter, limiter *RateLimiter, r *http.Request, key string) {
	limiter.log.Ctx(r.Context()).Warn("Rate limit exceeded",
		"client", key,
		"path", r.URL.Path,
	)

	retryAfter := 1
	if limiter.limit != rate.Inf && limiter.limit > 0 {
		retryAfter = max(int(1/float64(limiter.limit)), 1)
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	appErr := apperrors.TooManyRequests("Rate limit exceeded").Retryable()
	if err := httputil.WriteError(w, appErr); err != nil {
		limiter.log.Error("failed to write error response", "middleware", "RateLimit", "error", err)
	}
}
