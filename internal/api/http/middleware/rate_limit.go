package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	sweepEvery = 5 * time.Minute
	idleAfter  = 10 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientTable holds per-IP token buckets. Idle buckets are swept
// inline on lookup so the table needs no background goroutine.
type clientTable struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newClientTable(r rate.Limit, burst int) *clientTable {
	return &clientTable{
		limit:   r,
		burst:   burst,
		clients: make(map[string]*client),
	}
}

func (t *clientTable) allow(ip string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastSweep) >= sweepEvery {
		cutoff := now.Add(-idleAfter)
		for k, c := range t.clients {
			if c.lastSeen.Before(cutoff) {
				delete(t.clients, k)
			}
		}
		t.lastSweep = now
	}

	cl, ok := t.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}

func (t *clientTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// RateLimit throttles requests per client IP with a token bucket.
// Used on the publish and sandbox-run endpoints, which each cost a
// browser page or several storage writes.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	table := newClientTable(r, burst)

	return func(c *gin.Context) {
		if !table.allow(c.ClientIP(), time.Now()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
