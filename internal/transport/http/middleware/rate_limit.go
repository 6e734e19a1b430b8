package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RateLimitStore defines the shared counter operations required by the middleware.
type RateLimitStore interface {
	Increment(ctx context.Context, windowKey string, ttl time.Duration) (int64, error)
}

// PartitionFunc derives the identity a request is counted under. Returning
// an empty string means the policy does not apply to this request.
type PartitionFunc func(*gin.Context) string

// RateLimitPolicy configures a fixed-window limit for one partition class.
type RateLimitPolicy struct {
	Name      string
	Limit     int
	Window    time.Duration
	Partition PartitionFunc
}

// RateLimiter enforces fixed-window limits against a shared counter store,
// so any number of service instances converge on the same admission
// decisions without coordinating with each other.
type RateLimiter struct {
	store     RateLimitStore
	logger    *zap.Logger
	now       func() time.Time
	failOpen  bool
	decisions *prometheus.CounterVec
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:    store,
		logger:   logger,
		now:      time.Now,
		failOpen: true,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// WithFailOpen controls behaviour when the counter store is unreachable:
// fail open admits the request, fail closed rejects it with 503.
func (rl *RateLimiter) WithFailOpen(failOpen bool) *RateLimiter {
	rl.failOpen = failOpen
	return rl
}

// WithMetrics registers and attaches an admission decision counter.
func (rl *RateLimiter) WithMetrics(reg prometheus.Registerer) *RateLimiter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "rate_limit",
		Name:      "decisions_total",
		Help:      "Total number of rate limit decisions partitioned by policy and outcome.",
	}, []string{"policy", "outcome"})

	if err := reg.Register(decisions); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				decisions = existing
			}
		}
	}

	rl.decisions = decisions
	return rl
}

// UserPartition keys requests by the authenticated caller. Anonymous
// requests are skipped so a later policy can pick them up.
func UserPartition() PartitionFunc {
	return func(c *gin.Context) string {
		if userID := GetUserID(c); userID != "" {
			return "user:" + userID
		}
		return ""
	}
}

// IPPartition keys requests by client IP, falling back to the literal
// "unknown" when no address is available.
func IPPartition() PartitionFunc {
	return func(c *gin.Context) string {
		if ip := c.ClientIP(); ip != "" {
			return "ip:" + ip
		}
		return "unknown"
	}
}

// RateLimit returns a Gin middleware enforcing the provided policies. The
// first policy whose partition applies to the request decides its fate;
// order authenticated policies before anonymous ones.
func (rl *RateLimiter) RateLimit(policies ...RateLimitPolicy) gin.HandlerFunc {
	filtered := make([]RateLimitPolicy, 0, len(policies))
	for _, policy := range policies {
		if policy.Partition == nil || policy.Limit <= 0 || policy.Window <= 0 {
			continue
		}
		if policy.Name == "" {
			policy.Name = "default"
		}
		filtered = append(filtered, policy)
	}

	return func(c *gin.Context) {
		if len(filtered) == 0 || rl.store == nil {
			c.Next()
			return
		}

		for _, policy := range filtered {
			partition := policy.Partition(c)
			if partition == "" {
				continue
			}

			rl.enforce(c, policy, partition)
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) enforce(c *gin.Context, policy RateLimitPolicy, partition string) {
	now := rl.now()

	// All instances derive the same window index from wall-clock time, so
	// the counter key is shared without any coordination.
	windowIndex := now.UnixNano() / policy.Window.Nanoseconds()
	windowKey := fmt.Sprintf("%s:%s:%d", policy.Name, partition, windowIndex)

	count, err := rl.store.Increment(c.Request.Context(), windowKey, policy.Window)
	if err != nil {
		rl.logger.Warn("rate limit store unavailable",
			zap.String("policy", policy.Name),
			zap.String("partition", partition),
			zap.Error(err),
		)
		rl.observe(policy.Name, "error")

		if rl.failOpen {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			newErrorResponse(c, "rate limiter unavailable"))
		return
	}

	windowEnd := time.Unix(0, (windowIndex+1)*policy.Window.Nanoseconds())
	rl.applyHeaders(c, policy, count, windowEnd)

	// The increment happened before this comparison, so rejected requests
	// consume a slot in the window just like admitted ones.
	if count > int64(policy.Limit) {
		rl.observe(policy.Name, "rejected")
		rl.respondRateLimited(c, now, windowEnd)
		return
	}

	rl.observe(policy.Name, "admitted")
	c.Next()
}

func (rl *RateLimiter) observe(policy, outcome string) {
	if rl.decisions != nil {
		rl.decisions.WithLabelValues(policy, outcome).Inc()
	}
}

func (rl *RateLimiter) applyHeaders(c *gin.Context, policy RateLimitPolicy, count int64, windowEnd time.Time) {
	remaining := int64(policy.Limit) - count
	if remaining < 0 {
		remaining = 0
	}

	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(policy.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(windowEnd.Unix(), 10))
}

func (rl *RateLimiter) respondRateLimited(c *gin.Context, now, windowEnd time.Time) {
	retrySeconds := int(math.Ceil(windowEnd.Sub(now).Seconds()))
	if retrySeconds <= 0 {
		retrySeconds = 60
	}

	c.Header("Retry-After", strconv.Itoa(retrySeconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":      "Too many requests",
		"message":    "Rate limit exceeded. Please try again later.",
		"retryAfter": fmt.Sprintf("%d seconds", retrySeconds),
	})
}
