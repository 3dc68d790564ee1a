package config

import "time"

// EmailConfig SMTP 发信配置
type EmailConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	Username string `json:"username" yaml:"username" mapstructure:"username"` // 发件邮箱，对应 EMAIL_USER
	Password string `json:"password" yaml:"password" mapstructure:"password"` // SMTP 授权码，对应 EMAIL_PASS
	FromName string `json:"fromName" yaml:"fromName" mapstructure:"fromName"` // 发件人显示名

	// 熔断配置
	BreakerMaxFailures uint32        `json:"breakerMaxFailures" yaml:"breakerMaxFailures" mapstructure:"breakerMaxFailures"` // 连续失败多少次后熔断
	BreakerOpenTimeout time.Duration `json:"breakerOpenTimeout" yaml:"breakerOpenTimeout" mapstructure:"breakerOpenTimeout"` // 熔断持续时间
	SendTimeout        time.Duration `json:"sendTimeout" yaml:"sendTimeout" mapstructure:"sendTimeout"`                      // 单次异步发信超时
}

// DefaultEmailConfig 返回默认配置
func DefaultEmailConfig() EmailConfig {
	return EmailConfig{
		Host:               "smtp.qq.com",
		Port:               587,
		FromName:           "聊天室",
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
		SendTimeout:        15 * time.Second,
	}
}
