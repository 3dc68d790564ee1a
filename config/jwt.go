package config

import "time"

// JWTConfig 会话凭证配置
type JWTConfig struct {
	Secret        string        `json:"secret" yaml:"secret" mapstructure:"secret"`                      // HS256 签名密钥，进程启动时加载一次
	Issuer        string        `json:"issuer" yaml:"issuer" mapstructure:"issuer"`                      // 签发方
	TTL           time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`                               // 登录凭证有效期
	RefreshWindow time.Duration `json:"refreshWindow" yaml:"refreshWindow" mapstructure:"refreshWindow"` // 剩余有效期低于该值时续签
}

// DefaultJWTConfig 返回默认配置
// Secret 必须通过配置文件或 JWT_SECRET 环境变量提供
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Issuer:        "chat-room",
		TTL:           7 * 24 * time.Hour,
		RefreshWindow: 24 * time.Hour,
	}
}
