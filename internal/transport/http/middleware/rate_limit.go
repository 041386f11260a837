package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
)

// IdentifierFunc extracts the identifier a rule is scoped to. ok=false skips the rule.
type IdentifierFunc func(*gin.Context) (id string, ok bool)

// RateLimitRule is a sliding-window limit, stored under "<Name>:<identifier>".
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

func (r RateLimitRule) valid() bool {
	return r.Name != "" && r.Identifier != nil && r.Limit > 0 && r.Window > 0
}

// RateLimitBody is the 429 payload, shaped like the verification cooldown response.
type RateLimitBody struct {
	Error         string `json:"error"`
	TimeRemaining int    `json:"timeRemaining"`
	TraceID       string `json:"trace_id,omitempty"`
}

// RateLimiter enforces per-identifier attempt limits. Store failures let the request through.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a limiter over the store.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source (primarily for tests).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule to the client IP as resolved by gin's trusted proxy settings.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

type verdict struct {
	rule      RateLimitRule
	id        string
	remaining int
	reset     time.Time
}

// RateLimit admits the request against every valid rule. The first refusal answers 429;
// otherwise headers describe the rule closest to its limit.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.valid() {
			active = append(active, rule)
		}
	}
	if len(active) == 0 || rl.store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		now := rl.now()
		var tightest *verdict

		for _, rule := range active {
			id, ok := rule.Identifier(c)
			if !ok {
				continue
			}

			window, err := rl.store.Admit(c.Request.Context(), rule.Name+":"+id, rule.Limit, rule.Window, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", logger.MaskIP(id)),
					zap.Error(err),
				)
				continue
			}

			v := newVerdict(rule, id, window, now)
			if !window.Admitted {
				rl.reject(c, v, now)
				return
			}
			if tightest == nil || v.remaining < tightest.remaining {
				tightest = &v
			}
		}

		if tightest != nil {
			setRateLimitHeaders(c, *tightest)
		}
		c.Next()
	}
}

func newVerdict(rule RateLimitRule, id string, window port.RateLimitWindow, now time.Time) verdict {
	reset := now.Add(rule.Window)
	if !window.Oldest.IsZero() {
		reset = window.Oldest.Add(rule.Window)
	}
	return verdict{
		rule:      rule,
		id:        id,
		remaining: max(rule.Limit-window.Count, 0),
		reset:     reset,
	}
}

func setRateLimitHeaders(c *gin.Context, v verdict) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(v.rule.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(v.reset.Unix(), 10))
}

func (rl *RateLimiter) reject(c *gin.Context, v verdict, now time.Time) {
	wait := max(int(math.Ceil(v.reset.Sub(now).Seconds())), 1)

	setRateLimitHeaders(c, v)
	c.Header("Retry-After", strconv.Itoa(wait))

	rl.logger.Info("rate limit exceeded",
		zap.String("rule", v.rule.Name),
		zap.String("identifier", logger.MaskIP(v.id)),
		zap.Int("retry_after", wait),
	)

	c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitBody{
		Error:         fmt.Sprintf("too many requests, try again in %d seconds", wait),
		TimeRemaining: wait,
		TraceID:       GetTraceID(c),
	})
}
