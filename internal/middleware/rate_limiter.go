package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/myr2601/mintyapp/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry counts requests of one client IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// WindowLimiter is a per-IP fixed-window request counter.
type WindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// Allow counts one request for ip and reports whether it is within the limit,
// plus the end of the current window.
func (l *WindowLimiter) Allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Purge drops expired windows and returns how many were removed.
func (l *WindowLimiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

// Handler aborts with 429 once a client exceeds the limit.
func (l *WindowLimiter) Handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.Allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

const purgeInterval = 5 * time.Minute

var (
	loginLimiter = NewWindowLimiter(20, time.Minute)
	startPurge   sync.Once
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	startPurge.Do(func() { go purgeLoop(loginLimiter) })
	return loginLimiter.Handler("Terlalu banyak percobaan login. Coba lagi dalam 1 menit.")
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := NewWindowLimiter(limit, window)
	go purgeLoop(l)
	return l.Handler("Terlalu banyak permintaan. Coba lagi sebentar lagi.")
}

func purgeLoop(l *WindowLimiter) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		if n := l.Purge(); n > 0 {
			log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
		}
	}
}
