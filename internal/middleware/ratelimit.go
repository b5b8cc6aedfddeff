// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often idle clients are dropped from the limiter.
const sweepInterval = 5 * time.Minute

// RateLimiter keeps a sliding-window log of request times per client.
type RateLimiter struct {
	limit          int
	window         time.Duration
	trustedProxies int

	mu   sync.Mutex
	hits map[string][]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit requests per window and client. trustedProxies
// is the number of reverse proxies in front of the server that append to
// X-Forwarded-For; with zero the header is ignored and the peer address
// identifies the client. Call Stop to end the background sweep.
func NewRateLimiter(limit int, window time.Duration, trustedProxies int) *RateLimiter {
	rl := &RateLimiter{
		limit:          limit,
		window:         window,
		trustedProxies: max(trustedProxies, 0),
		hits:           make(map[string][]time.Time),
		stop:           make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the background sweep. Further calls are no-ops.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// recent drops timestamps at or before cutoff. times is reused.
func recent(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// allow records a request for key and reports whether it fits the window.
func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	times := recent(rl.hits[key], now.Add(-rl.window))
	if len(times) >= rl.limit {
		rl.hits[key] = times
		return false
	}
	rl.hits[key] = append(times, now)
	return true
}

// cleanup forgets clients with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, times := range rl.hits {
		if times = recent(times, cutoff); len(times) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = times
		}
	}
}

// Middleware rejects clients over the limit with a JSON 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(rl.window.Seconds())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r, rl.trustedProxies)) {
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP identifies the caller. Each trusted proxy appends the address it
// received the request from, so the client is the trustedProxies-th entry
// from the right of X-Forwarded-For. Entries further left are client
// supplied and never used. A header shorter than the proxy chain falls back
// to the peer address.
func clientIP(r *http.Request, trustedProxies int) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if trustedProxies <= 0 {
		return peer
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	if len(hops) < trustedProxies {
		return peer
	}
	return hops[len(hops)-trustedProxies]
}
