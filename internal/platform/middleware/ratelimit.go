package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Skipper exempts requests from limiting. Nil limits everything.
	Skipper func(c echo.Context) bool
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 20, BurstSize: 40}
}

// CredentialRateLimitConfig is the tighter budget applied to the sign-in and
// registration endpoints: five attempts, then one every five seconds.
func CredentialRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 0.2, BurstSize: 5}
}

// callerLimiters keeps one limiter per caller key. Entries idle for longer
// than idleAfter are dropped on the next sweep.
type callerLimiters struct {
	mu        sync.Mutex
	byKey     map[string]*callerLimiter
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	nextSweep time.Time
}

type callerLimiter struct {
	*rate.Limiter
	seen time.Time
}

func newCallerLimiters(cfg RateLimitConfig) *callerLimiters {
	return &callerLimiters{
		byKey:     make(map[string]*callerLimiter),
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.BurstSize,
		idleAfter: 10 * time.Minute,
	}
}

func (l *callerLimiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, cl := range l.byKey {
			if now.Sub(cl.seen) > l.idleAfter {
				delete(l.byKey, k)
			}
		}
		l.nextSweep = now.Add(l.idleAfter)
	}

	cl, ok := l.byKey[key]
	if !ok {
		cl = &callerLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = cl
	}
	cl.seen = now
	return cl.Limiter
}

// retryAfterSeconds is how long the caller should wait for the next token,
// rounded up to a whole second. A limiter that never refills reports 1.
func retryAfterSeconds(lim *rate.Limiter, now time.Time) int {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return 1
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	if wait == rate.InfDuration {
		return 1
	}
	return max(1, int(math.Ceil(wait.Seconds())))
}

// rateLimitKey buckets signed-in callers by identity and everyone else by IP.
func rateLimitKey(c echo.Context) string {
	if uid := auth.UIDFromContext(c.Request().Context()); uid != "" {
		return "uid:" + uid
	}
	return "ip:" + c.RealIP()
}

// RateLimit rejects callers that exceed their budget with 429 and a
// Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiters := newCallerLimiters(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			now := time.Now()
			lim := limiters.get(rateLimitKey(c), now)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			if !lim.AllowN(now, 1) {
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(lim, now)))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "muitas tentativas, tente novamente em instantes")
			}
			return next(c)
		}
	}
}
