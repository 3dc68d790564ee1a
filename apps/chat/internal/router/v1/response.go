package v1

import (
	"context"
	"strconv"

	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/consts"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/result"

	"github.com/gin-gonic/gin"
)

// failWithError 把 service 层错误写成统一响应
// 业务错误直接返回对应错误码；服务端错误记录日志后返回通用错误码。
func failWithError(ctx context.Context, c *gin.Context, err error, logMsg string) {
	code := utils.ExtractErrorCode(err)
	if consts.IsNonServerError(code) {
		result.Fail(c, nil, code)
		return
	}

	logger.Error(ctx, logMsg,
		logger.Int32("code", code),
		logger.ErrorField("error", err),
	)
	result.Fail(c, nil, code)
}

// mustAccountID 读取当前登录账号，未挂会话守卫时按未登录处理
func mustAccountID(c *gin.Context) (int64, bool) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok || accountID <= 0 {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return 0, false
	}
	return accountID, true
}

// parseIDParam 解析路径中的账号 id
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return 0, false
	}
	return id, true
}
