package util

import (
	"ChatRoom/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 追踪中间件，生成或获取 trace_id 并存入 Gin 上下文与请求 context
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 优先沿用上游（Nginx）传入的请求 ID
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = uuid.New().String()
		}

		// 2. 放入 Gin 上下文，供 result 包回写到响应体
		c.Set("trace_id", traceId)

		// 3. 放入请求 context，供 service/repository 日志使用
		c.Request = c.Request.WithContext(ctxmeta.WithTraceID(c.Request.Context(), traceId))

		// 4. 放入响应头，方便客户端拿着 ID 排查问题
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}
