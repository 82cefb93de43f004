package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. maxRequest tokens
// refill evenly over duration.
type RateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	maxRequest int
	duration   time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func NewRateLimiter(maxRequest int, duration time.Duration) *RateLimiter {
	if maxRequest < 1 {
		maxRequest = 1
	}
	if duration <= 0 {
		duration = time.Minute
	}
	return &RateLimiter{
		visitors:   make(map[string]*visitor),
		maxRequest: maxRequest,
		duration:   duration,
		now:        time.Now,
	}
}

// Allow consumes a token for ip. It reports the remaining tokens and, when
// refused, how long until the next one.
func (rl *RateLimiter) Allow(ip string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[ip]
	if !ok {
		every := rl.duration / time.Duration(rl.maxRequest)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.maxRequest)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	remaining := int(math.Floor(v.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, 0
}

// sweep forgets visitors idle for a full window, at most once per window.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.duration {
		return
	}
	rl.lastSweep = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.duration {
			delete(rl.visitors, ip)
		}
	}
}

func RateLimit(maxRequest int, duration time.Duration, log *logger.Logger) gin.HandlerFunc {
	return rateLimit(NewRateLimiter(maxRequest, duration), log)
}

func rateLimit(limiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, remaining, retryAfter := limiter.Allow(ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.maxRequest))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			log.WarnWithContext(c.Request.Context(), "Rate limit exceeded").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Int("max_requests", limiter.maxRequest).
				Int("retry_after_seconds", seconds).
				Log()

			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				constants.BuildErrorResponse(constants.MsgRateLimited, "RATE_LIMITED", nil))
			return
		}
		c.Next()
	}
}
