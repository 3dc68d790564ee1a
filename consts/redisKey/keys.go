package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// RegisterCaptchaTTL 注册验证码有效期
	RegisterCaptchaTTL = 5 * time.Minute
	// RegisterCaptchaLockTTL 同一邮箱两次发送的最小间隔
	RegisterCaptchaLockTTL = 1 * time.Minute
)

// ==================== Key 构造函数 ====================

// RegisterCaptchaKey 注册验证码 Key: captcha:register:{email}
func RegisterCaptchaKey(email string) string {
	return fmt.Sprintf("captcha:register:%s", email)
}

// RegisterCaptchaLockKey 注册验证码发送间隔 Key: captcha:register:lock:{email}
func RegisterCaptchaLockKey(email string) string {
	return fmt.Sprintf("captcha:register:lock:%s", email)
}

// IPRateLimitKey IP 限流 Key: rate:limit:ip:{ip}
func IPRateLimitKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
