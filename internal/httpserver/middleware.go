package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("requestId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

// clientLimiter hands out one token bucket per client address. Buckets
// idle since before a sweep cutoff are forgotten.
type clientLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{rps: rate.Limit(rps), burst: burst, clients: make(map[string]*clientBucket)}
}

func (c *clientLimiter) get(key string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.clients[key]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(c.rps, c.burst)}
		c.clients[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// sweep forgets clients not seen since cutoff and reports how many.
func (c *clientLimiter) sweep(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, b := range c.clients {
		if b.lastSeen.Before(cutoff) {
			delete(c.clients, k)
			n++
		}
	}
	return n
}

func (c *clientLimiter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// middleware rejects requests over the per-client rate with 429.
func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !c.get(host, time.Now()).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}
