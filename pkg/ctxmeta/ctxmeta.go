// Package ctxmeta 统一管理请求级元数据在 context.Context 中的存取。
// gin.Context 也实现了 context.Context，其 Value 会查找 c.Set 写入的字符串 key，
// 因此读取时对字符串 key 做兼容。
package ctxmeta

import (
	"context"
	"time"
)

type ctxKey string

const (
	traceIDKey   ctxKey = "trace_id"
	clientIPKey  ctxKey = "client_ip"
	accountKey   ctxKey = "account"
	ginTraceKey         = "trace_id"
	ginClientKey        = "client_ip"
)

// Account 当前请求已认证的身份
type Account struct {
	AccountID int64
	Username  string
	ExpiresAt time.Time
}

// WithTraceID 写入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 读取 trace_id，不存在返回空串
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	if v, ok := ctx.Value(ginTraceKey).(string); ok {
		return v
	}
	return ""
}

// WithClientIP 写入客户端 IP
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP 读取客户端 IP
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(clientIPKey).(string); ok {
		return v
	}
	if v, ok := ctx.Value(ginClientKey).(string); ok {
		return v
	}
	return ""
}

// WithAccount 写入已认证身份
func WithAccount(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFrom 读取已认证身份
func AccountFrom(ctx context.Context) (Account, bool) {
	if ctx == nil {
		return Account{}, false
	}
	account, ok := ctx.Value(accountKey).(Account)
	return account, ok
}

// AccountID 读取已认证账号 id，未认证返回 0
func AccountID(ctx context.Context) int64 {
	account, _ := AccountFrom(ctx)
	return account.AccountID
}

// Detach 复制需要透传的元数据到一个不受父 ctx 取消影响的新 ctx，供异步任务使用
func Detach(parent context.Context) context.Context {
	ctx := context.Background()
	if traceID := TraceID(parent); traceID != "" {
		ctx = WithTraceID(ctx, traceID)
	}
	if ip := ClientIP(parent); ip != "" {
		ctx = WithClientIP(ctx, ip)
	}
	if account, ok := AccountFrom(parent); ok {
		ctx = WithAccount(ctx, account)
	}
	return ctx
}
