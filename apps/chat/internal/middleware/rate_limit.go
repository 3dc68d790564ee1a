package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ChatRoom/config"
	"ChatRoom/consts"
	rediskey "ChatRoom/consts/redisKey"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/metrics"
	"ChatRoom/pkg/result"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket Redis 令牌桶
//
//	KEYS[1]: 限流 key
//	ARGV[1]: 当前时间戳（毫秒）
//	ARGV[2]: 桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 本次消耗的令牌数
//
// 返回 1 放行，0 拒绝
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if tokens == nil then
    tokens = capacity
end
if last_time == nil then
    last_time = now
end

local refill = math.floor((math.max(0, now - last_time) * rate) / 1000)
if refill > 0 then
    tokens = math.min(capacity, tokens + refill)
    last_time = now
end

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_time', last_time)
redis.call('EXPIRE', key, math.max(60, math.ceil(capacity / rate) * 2))

return allowed
`

var tokenBucketScript = redis.NewScript(luaTokenBucket)

// errRedisUnavailable Redis 未初始化，调用方改用本地限流
var errRedisUnavailable = errors.New("rate limit: redis unavailable")

// RateLimiter IP 级令牌桶限流
// 正常情况下走 Redis，多实例共享额度；Redis 不可用时退化为进程内限流，按 IP 缓存 limiter，LRU 淘汰。
type RateLimiter struct {
	rate  float64
	burst int

	client *redis.Client

	local *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter 创建限流器，client 可为 nil
func NewRateLimiter(cfg config.RateLimitConfig, client *redis.Client) (*RateLimiter, error) {
	if cfg.Rate <= 0 || cfg.Burst <= 0 {
		return nil, errors.New("rate limit: rate and burst must be positive")
	}
	capacity := cfg.LocalCapacity
	if capacity <= 0 {
		capacity = config.DefaultRateLimitConfig().LocalCapacity
	}
	local, err := lru.New[string, *rate.Limiter](capacity)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		rate:   cfg.Rate,
		burst:  cfg.Burst,
		client: client,
		local:  local,
	}, nil
}

// Allow 判断该 IP 本次请求是否放行，返回值 source 标记由哪一侧做出判断
func (r *RateLimiter) Allow(ctx context.Context, ip string) (allowed bool, source string) {
	allowed, err := r.allowRedis(ctx, ip)
	if err == nil {
		return allowed, "redis"
	}
	if !errors.Is(err, errRedisUnavailable) {
		logger.Warn(ctx, "Redis 限流失败，降级为本地限流",
			logger.String("ip", ip),
			logger.ErrorField("error", err),
		)
	}
	return r.allowLocal(ip), "local"
}

func (r *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, error) {
	client := r.client
	if client == nil {
		return false, errRedisUnavailable
	}

	// Redis 慢时不能拖住请求
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	res, err := tokenBucketScript.Run(redisCtx, client,
		[]string{rediskey.IPRateLimitKey(ip)},
		time.Now().UnixMilli(), r.burst, r.rate, 1,
	).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *RateLimiter) allowLocal(ip string) bool {
	limiter, ok := r.local.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.rate), r.burst)
		// 并发首次访问时以先放入的为准
		if prev, found, _ := r.local.PeekOrAdd(ip, limiter); found {
			limiter = prev
		}
	}
	return limiter.Allow()
}

// RateLimitMiddleware IP 限流中间件，超限返回 429
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ip := ClientIPFromGinContext(c)
		if ip == "" {
			ip = GetClientIP(c)
		}

		allowed, source := limiter.Allow(NewContextWithGin(c), ip)
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(source).Inc()
			logger.Warn(NewContextWithGin(c), "请求被限流",
				logger.String("ip", ip),
				logger.String("source", source),
				logger.String("path", c.Request.URL.Path),
			)
			result.AbortWithStatus(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
