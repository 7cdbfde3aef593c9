package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// RateLimiter enforces per-client request limits using fixed one-minute
// windows. Expired windows are garbage-collected periodically.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*rateLimitWindow
	defaults RateLimitConfig
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

// RateLimitConfig defines the rate limiting thresholds.
type RateLimitConfig struct {
	MaxCallsPerMinute int // Default max calls per minute per client
	BurstSize         int // Hard ceiling; requests past MaxCallsPerMinute are still rejected
	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix
}

type rateLimitWindow struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter with the given defaults.
// Call Close to stop the cleanup goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxCallsPerMinute == 0 {
		cfg.MaxCallsPerMinute = 60 // 1 per second default
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = cfg.MaxCallsPerMinute * 2
	}

	rl := &RateLimiter{
		windows:  make(map[string]*rateLimitWindow),
		defaults: cfg,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow records a request for key and reports whether it is within limits.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	window, exists := rl.windows[key]
	if !exists || now.Sub(window.windowStart) > time.Minute {
		rl.windows[key] = &rateLimitWindow{count: 1, windowStart: now}
		return true
	}

	window.count++
	if window.count > rl.defaults.BurstSize {
		slog.Warn("[RATE-LIMIT] burst exceeded", "key", key, "count", window.count, "limit", rl.defaults.BurstSize)
		return false
	}
	if window.count > rl.defaults.MaxCallsPerMinute {
		slog.Warn("[RATE-LIMIT] limit exceeded", "key", key, "count", window.count, "limit", rl.defaults.MaxCallsPerMinute)
		return false
	}
	return true
}

// Middleware rejects requests from clients over their limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r, rl.defaults.TrustedProxies)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","retry_after_seconds":60}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the address a request is attributed to. It is the remote
// host unless that host is a trusted proxy, in which case X-Forwarded-For is
// walked from the right and the first hop that is not itself a trusted proxy
// wins. Hops left of that one are client-supplied and never used.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !isTrusted(peer, trusted) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	client := peer.Unmap()
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !isTrusted(client, trusted) {
			break
		}
	}
	return client.String()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies accepts bare addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// cleanup periodically removes expired windows to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, window := range rl.windows {
		if now.Sub(window.windowStart) > 2*time.Minute {
			delete(rl.windows, key)
		}
	}
}

// Close stops the background cleanup.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

// Stats returns current rate limiter statistics.
func (rl *RateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_windows":    len(rl.windows),
		"max_calls_per_min": rl.defaults.MaxCallsPerMinute,
		"burst_size":        rl.defaults.BurstSize,
	}
}
