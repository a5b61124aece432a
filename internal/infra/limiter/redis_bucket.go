package limiter

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "ratelimit:"

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	-- 取得或初始化 bucket 狀態
	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	-- 計算需要補充的 tokens
	local elapsedSeconds = math.max(0, now - lastRefill) / 1000000000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', now)
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RsTokenBucket 多個實例共用的 redis token bucket
// redis 不可用時放行並記錄
type RsTokenBucket struct {
	LimiterConfig
	client redis.Scripter
	logger zerolog.Logger
	now    func() time.Time
}

func NewRsTokenBucket(client redis.Scripter, config *LimiterConfig, logger zerolog.Logger) *RsTokenBucket {
	rb := &RsTokenBucket{
		client: client,
		logger: logger,
		now:    time.Now,
	}
	if config != nil {
		rb.LimiterConfig = config.normalize()
	} else {
		rb.LimiterConfig = GetDefaultLimiterConfig()
	}
	return rb
}

func (r *RsTokenBucket) Allow(ctx context.Context, key string) bool {
	ttl := int64(math.Ceil(r.fullAfter().Seconds())) + 1
	result, err := tokenBucketScript.Run(
		ctx,
		r.client,
		[]string{redisKeyPrefix + key},
		r.Capacity,
		r.RatePS,
		r.now().UnixNano(),
		ttl,
	).Int64()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("redis rate limit unavailable, allowing request")
		return true
	}
	return result == 1
}

var _ ILimiter = (*RsTokenBucket)(nil)
