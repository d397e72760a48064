package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByClientIP counts per client address.
func ByClientIP(c *gin.Context) string { return "ip:" + c.ClientIP() }

// ByActor counts per authenticated subject. Must run after JWTAuth;
// unauthenticated requests fall back to the client address.
func ByActor(c *gin.Context) string {
	if claims := ClaimsFrom(c); claims != nil && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	return ByClientIP(c)
}

type rateWindow struct {
	count int
	ends  time.Time
}

// RateLimiter is a fixed-window request counter. Expired windows are dropped
// inline, at most once per window.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration
	key    KeyFunc
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*rateWindow
	nextPurge time.Time
}

func NewRateLimiter(name string, limit int, window time.Duration, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		key:     key,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

// allow counts one request for key and returns the remaining budget and the
// end of the current window.
func (l *RateLimiter) allow(key string) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		if n := l.purgeLocked(now); n > 0 {
			log.Debug().Str("limiter", l.name).Int("entries_purged", n).Msg("rate limiter purged")
		}
		l.nextPurge = now.Add(l.window)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.ends) {
		w = &rateWindow{ends: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, max(l.limit-w.count, 0), w.ends
}

func (l *RateLimiter) purgeLocked(now time.Time) int {
	purged := 0
	for k, w := range l.windows {
		if now.After(w.ends) {
			delete(l.windows, k)
			purged++
		}
	}
	return purged
}

// Handler enforces the limit. Rejected requests get 429 with Retry-After in
// seconds.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, ends := l.allow(l.key(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			retry := int(ends.Sub(l.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			log.Warn().Str("limiter", l.name).Str("path", c.FullPath()).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.CodeRateLimited, "Zu viele Anfragen. Bitte später erneut versuchen."))
			return
		}
		c.Next()
	}
}
