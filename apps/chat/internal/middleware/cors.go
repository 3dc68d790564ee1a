package middleware

import (
	"net/http"

	"ChatRoom/pkg/util"

	"github.com/gin-gonic/gin"
)

// CorsMiddleware 跨域中间件
// 回显请求的 Origin 并允许携带凭据；New-Token 需要显式暴露给浏览器脚本。
func CorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, "+util.HeaderXRequestID)
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Expose-Headers", HeaderNewToken+", "+util.HeaderXRequestID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
