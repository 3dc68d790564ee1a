package config

// RateLimitConfig IP 限流配置
type RateLimitConfig struct {
	Enabled       bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Rate          float64 `json:"rate" yaml:"rate" mapstructure:"rate"`                            // 每秒产生的令牌数
	Burst         int     `json:"burst" yaml:"burst" mapstructure:"burst"`                         // 令牌桶容量
	LocalCapacity int     `json:"localCapacity" yaml:"localCapacity" mapstructure:"localCapacity"` // Redis 不可用时本地限流器最多缓存的 IP 数
}

// DefaultRateLimitConfig 返回默认配置：10 req/s，突发 20
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:       true,
		Rate:          10,
		Burst:         20,
		LocalCapacity: 10000,
	}
}
