package middleware

import (
	"net/http"
	"sync"
	"time"

	"cajaledger/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// slidingWindow counts requests per client IP within a fixed-size window.
// One instance per limiter so the login limiter and the general limiter
// keep independent buckets.
type slidingWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	count   int
	resetAt time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	sw := &slidingWindow{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go sw.purgeLoop()
	return sw
}

// allow increments the counter for ip and reports whether it is still
// under the limit for the current window.
func (sw *slidingWindow) allow(ip string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	b, ok := sw.buckets[ip]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(sw.window)}
		sw.buckets[ip] = b
	}
	b.count++
	return b.count <= sw.limit
}

// purgeLoop drops expired buckets so IPs that never return do not
// accumulate forever.
func (sw *slidingWindow) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		sw.mu.Lock()
		purged := 0
		for ip, b := range sw.buckets {
			if now.After(b.resetAt) {
				delete(sw.buckets, ip)
				purged++
			}
		}
		remaining := len(sw.buckets)
		sw.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter buckets purged")
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	sw := newSlidingWindow(20, time.Minute)
	return func(c *gin.Context) {
		if !sw.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general-purpose per-IP limiter applied to the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	sw := newSlidingWindow(limit, window)
	return func(c *gin.Context) {
		if !sw.allow(c.ClientIP()) {
			c.Header("Retry-After", window.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
