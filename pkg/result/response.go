package result

import (
	"net/http"

	"ChatRoom/consts"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

func build(c *gin.Context, data interface{}, message string, code int32) Response {
	if message == "" {
		message = consts.GetMessage(code)
	}
	return Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: c.GetString("trace_id"),
	}
}

// Result 返回响应，业务结果统一使用 HTTP 200
func Result(c *gin.Context, data interface{}, message string, code int32) {
	c.JSON(http.StatusOK, build(c, data, message, code))
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// Fail 返回失败响应
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// SuccessWithMessage 返回成功响应并自定义消息
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	Result(c, data, message, consts.CodeSuccess)
}

// FailWithMessage 返回失败响应并自定义消息
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, data, message, code)
}

// AbortWithStatus 以指定 HTTP 状态码中断请求（鉴权失败、限流等中间件场景）
func AbortWithStatus(c *gin.Context, httpStatus int, code int32) {
	c.AbortWithStatusJSON(httpStatus, build(c, nil, "", code))
}
