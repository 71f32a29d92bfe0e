package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterSweep = 5 * time.Minute
	limiterIdle  = 10 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size. Idle entries are swept until ctx
// is done. Rejections are logged at debug through the request logger.
func RateLimit(ctx context.Context, r rate.Limit, b int) gin.HandlerFunc {
	var limiters sync.Map // ip -> *ipLimiter

	go func() {
		ticker := time.NewTicker(limiterSweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().Add(-limiterIdle)
				limiters.Range(func(k, v any) bool {
					il := v.(*ipLimiter)
					il.mu.Lock()
					stale := il.lastSeen.Before(cutoff)
					il.mu.Unlock()
					if stale {
						limiters.Delete(k)
					}
					return true
				})
			case <-ctx.Done():
				return
			}
		}
	}()

	getLimiter := func(ip string) *rate.Limiter {
		v, _ := limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(r, b)})
		il := v.(*ipLimiter)
		il.mu.Lock()
		il.lastSeen = time.Now()
		il.mu.Unlock()
		return il.limiter
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		lim := getLimiter(ip)
		if !lim.Allow() {
			retry := 0
			if r > 0 {
				wait := time.Duration(float64(time.Second) / float64(r))
				retry = int(wait.Seconds()) + 1
				c.Header("Retry-After", strconv.Itoa(retry))
			}
			RequestLogger(c, nil).Debug("rate limited",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path),
				zap.Int("retry_after", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
