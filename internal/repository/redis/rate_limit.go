package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	uuid "github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

var errInvalidWindow = errors.New("rate limit window and limit must be positive")

// admitLua evicts attempts older than the window, admits the new one when under the limit and
// reports the surviving oldest score. Scores are Unix milliseconds.
//
// KEYS[1] window key
// ARGV    now, window, limit, member, ttl (all ms except member)
// returns {admitted, count, oldest score or ""}
var admitLua = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', '(' .. (now - window))

local count = redis.call('ZCARD', KEYS[1])
local admitted = 0
if count < limit then
  redis.call('ZADD', KEYS[1], now, ARGV[4])
  count = count + 1
  admitted = 1
end
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
if #oldest == 0 then
  return {admitted, count, ''}
end
return {admitted, count, oldest[2]}
`)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository keeps one sorted set of attempt timestamps per limited key.
type RateLimitRepository struct {
	client redis.Scripter
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client redis.Scripter, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// Admit offers one attempt at now to the window ending at now.
func (r *RateLimitRepository) Admit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (port.RateLimitWindow, error) {
	if limit <= 0 || window <= 0 {
		return port.RateLimitWindow{}, errInvalidWindow
	}

	ttl := r.cfg.TTL
	if ttl < window {
		ttl = window
	}
	nowMs := now.UnixMilli()
	// Same-millisecond attempts need distinct members to be counted separately.
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	res, err := admitLua.Run(ctx, r.client, []string{r.key(key)},
		nowMs, window.Milliseconds(), limit, member, ttl.Milliseconds(),
	).Slice()
	if err != nil {
		return port.RateLimitWindow{}, fmt.Errorf("redis admit attempt: %w", err)
	}
	return parseAdmitReply(res)
}

func parseAdmitReply(res []any) (port.RateLimitWindow, error) {
	if len(res) != 3 {
		return port.RateLimitWindow{}, fmt.Errorf("redis admit attempt: unexpected reply length %d", len(res))
	}
	admitted, ok1 := res[0].(int64)
	count, ok2 := res[1].(int64)
	oldestRaw, ok3 := res[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return port.RateLimitWindow{}, fmt.Errorf("redis admit attempt: unexpected reply %v", res)
	}

	window := port.RateLimitWindow{Admitted: admitted == 1, Count: int(count)}
	if oldestRaw != "" {
		score, err := strconv.ParseFloat(oldestRaw, 64)
		if err != nil {
			return port.RateLimitWindow{}, fmt.Errorf("redis admit attempt: parse oldest score: %w", err)
		}
		window.Oldest = time.UnixMilli(int64(score)).UTC()
	}
	return window, nil
}

func (r *RateLimitRepository) key(key string) string {
	if r.cfg.KeyPrefix == "" {
		return key
	}
	return r.cfg.KeyPrefix + ":" + key
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
