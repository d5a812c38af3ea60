package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set scored by hit time in ms. Only accepted
// hits are recorded, so a client hammering a full window is let back in as
// soon as its oldest accepted hit ages out.
//
// KEYS[1] window key
// ARGV    now_ms, window_ms, limit, member
// returns {allowed 0|1, hits in window, retry_ms}
const luaSlidingWindow = `
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local used = redis.call('ZCARD', key)

if used >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local wait = window
  if oldest[2] then
    wait = tonumber(oldest[2]) + window - now
  end
  if wait < 1 then wait = 1 end
  return {0, used, wait}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, used + 1, 0}
`

// SlidingWindowLimiter allows at most limit hits per key within window.
// A non-positive limit disables it.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script

	now    func() time.Time
	member func() string
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
		now:    time.Now,
		member: uuid.NewString,
	}
}

func (l *SlidingWindowLimiter) key(suffix string) string {
	return fmt.Sprintf("%s:%s", KeyRateLimit(l.scope), suffix)
}

// Allow records a hit for suffix (a user or client address) and reports
// whether it fits the window. When it does not, retryAfter is the time until
// the oldest hit leaves the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	if l.limit <= 0 {
		return true, 0, 0, nil
	}

	res, err := l.script.Run(ctx, l.rdb,
		[]string{l.key(suffix)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, l.member(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, fmt.Errorf("rate limit %s: unexpected script result %v", l.scope, res)
	}

	allowed = res[0] == 1
	if !allowed {
		metrics.Throttled(l.scope)
	}

	return allowed, res[1], time.Duration(res[2]) * time.Millisecond, nil
}
