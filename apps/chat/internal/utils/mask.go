package utils

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail 对邮箱进行脱敏处理
// 示例: example@gmail.com -> e*****e@gmail.com
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	if utf8.RuneCountInString(name) <= 2 {
		return email
	}
	runes := []rune(name)
	return string(runes[0]) + "*****" + string(runes[len(runes)-1]) + "@" + parts[1]
}

// MaskToken 只保留凭证首尾各 6 位，用于日志
func MaskToken(token string) string {
	if len(token) <= 16 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-6:]
}
