package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ClientLimiter is an in-memory per-IP token bucket; for prod swap to Redis.
type ClientLimiter struct {
	capacity int
	perMin   int
	mu       sync.Mutex
	clients  map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewClientLimiter creates a limiter with capacity tokens refilled at perMinute.
func NewClientLimiter(capacity, perMinute int) *ClientLimiter {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &ClientLimiter{
		capacity: capacity,
		perMin:   perMinute,
		clients:  make(map[string]*bucket),
	}
}

// GinMiddleware returns a gin handler enforcing per-IP limits.
func (l *ClientLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *ClientLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	b, ok := l.clients[key]
	if !ok {
		l.clients[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.perMin))
	if refill > 0 {
		b.tokens = min(b.tokens+refill, l.capacity)
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
