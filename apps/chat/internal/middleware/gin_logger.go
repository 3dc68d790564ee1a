package middleware

import (
	"context"
	"time"

	"ChatRoom/pkg/ctxmeta"
	"ChatRoom/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewContextWithGin 从 gin.Context 构造传给 service 层的 context.Context
// 请求 context 已由中间件写入 trace_id、client_ip、账号；这里补齐只存在于 gin 上下文中的部分。
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if ctxmeta.TraceID(ctx) == "" {
		if traceID := c.GetString("trace_id"); traceID != "" {
			ctx = ctxmeta.WithTraceID(ctx, traceID)
		}
	}
	if ctxmeta.ClientIP(ctx) == "" {
		if ip := c.GetString("client_ip"); ip != "" {
			ctx = ctxmeta.WithClientIP(ctx, ip)
		}
	}
	if _, ok := ctxmeta.AccountFrom(ctx); !ok {
		if identity, ok := GetSession(c); ok {
			ctx = ctxmeta.WithAccount(ctx, ctxmeta.Account{
				AccountID: identity.AccountID,
				Username:  identity.Username,
				ExpiresAt: identity.ExpiresAt,
			})
		}
	}
	return ctx
}

// GinLogger 请求日志
// 请求开始记 Info，服务端错误(5xx)和慢请求(>2s)记 Warn。
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		clientIP := ClientIPFromGinContext(c)
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		ctx := NewContextWithGin(c)

		logger.Info(ctx, "请求开始",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.String("ip", clientIP),
		)

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()
		if status >= 500 || cost > 2*time.Second {
			logger.Warn(NewContextWithGin(c), "慢请求或服务端错误",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", clientIP),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
		}
	}
}
