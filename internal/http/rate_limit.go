package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

// ratePolicy names a limited route. The route doubles as the metrics label and
// the key namespace, so two routes never share a window.
type ratePolicy struct {
	route  string
	limit  int
	window time.Duration
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitWrite     = 60
	rateLimitSearch    = 30
	rateLimitLive      = 30
)

var (
	policyCreateTeam = ratePolicy{route: "/api/teams", limit: rateLimitWrite, window: rateWindowDefault}
	policyContribute = ratePolicy{route: "/api/teams/{id}/contribute", limit: rateLimitWrite, window: rateWindowDefault}
	policyStream     = ratePolicy{route: "/api/teams/{id}/stream", limit: rateLimitLive, window: rateWindowRealtime}
	policySearch     = ratePolicy{route: "/api/search", limit: rateLimitSearch, window: rateWindowDefault}
	policyDonate     = ratePolicy{route: "/api/donate", limit: rateLimitWrite, window: rateWindowDefault}
	policyLive       = ratePolicy{route: "/ws", limit: rateLimitLive, window: rateWindowRealtime}
)

// limited rejects requests over the policy's budget with 429 and annotates
// every response with the X-RateLimit-* headers.
func (r *Router) limited(p ratePolicy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if p.limit <= 0 || r.limiter == nil {
			next(w, req)
			return
		}
		key := requesterKey(req)
		decision := r.limiter.Allow(p.route+"|"+key, p.limit, p.window)
		r.applyRateHeaders(w, p.limit, decision)
		if !decision.allowed {
			r.metrics.rateLimited(p.route, keyKind(key))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, req)
	}
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	remaining := max(limit-decision.count, 0)
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

// requesterKey identifies the caller by socket address. Forwarding headers
// are client-controlled and never used for limits.
func requesterKey(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	if host == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}

func keyKind(key string) string {
	if kind, _, ok := strings.Cut(key, ":"); ok && kind != "" {
		return kind
	}
	return "unknown"
}

const rateLimiterSweepInterval = 5 * time.Minute

type memoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type fixedWindow struct {
	count int
	end   time.Time
}

// NewMemoryRateLimiter returns a process-local limiter. Windows are aligned
// to multiples of their length, and expired ones are swept until Close.
func NewMemoryRateLimiter() RateLimiter {
	rl := newMemoryRateLimiter(time.Now)
	go rl.sweepLoop(rateLimiterSweepInterval)
	return rl
}

func newMemoryRateLimiter(now func() time.Time) *memoryRateLimiter {
	return &memoryRateLimiter{
		windows: make(map[string]*fixedWindow),
		now:     now,
		stop:    make(chan struct{}),
	}
}

func (rl *memoryRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = rateWindowDefault
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.end) {
		w = &fixedWindow{end: now.Truncate(window).Add(window)}
		rl.windows[key] = w
	}
	if w.count >= limit {
		return rateDecision{allowed: false, count: w.count, windowEnd: w.end}
	}
	w.count++
	return rateDecision{allowed: true, count: w.count, windowEnd: w.end}
}

func (rl *memoryRateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *memoryRateLimiter) sweep() int {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, w := range rl.windows {
		if !now.Before(w.end) {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

func (rl *memoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}
