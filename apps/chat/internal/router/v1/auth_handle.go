package v1

import (
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/service"
	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/consts"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/result"

	"github.com/gin-gonic/gin"
)

// AuthHandler 注册登录处理器
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 创建注册登录处理器
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterCaptcha 发送注册验证码
// @Router /api/v1/user/register-captcha [get]
func (h *AuthHandler) RegisterCaptcha(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定查询参数
	var req dto.RegisterCaptchaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 发送验证码，邮件投递是异步的
	if err := h.authService.SendRegisterCaptcha(ctx, req.Address); err != nil {
		failWithError(ctx, c, err, "发送注册验证码服务内部错误")
		return
	}

	logger.Info(ctx, "注册验证码已发送",
		logger.String("email", utils.MaskEmail(req.Address)),
	)
	result.SuccessWithMessage(c, nil, "发送成功")
}

// Register 注册
// @Router /api/v1/user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "注册请求参数校验失败",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	profile, err := h.authService.Register(ctx, &req)
	if err != nil {
		failWithError(ctx, c, err, "注册服务内部错误")
		return
	}

	result.Success(c, profile)
}

// Login 用户名密码登录
// @Router /api/v1/user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		failWithError(ctx, c, err, "登录服务内部错误")
		return
	}

	logger.Info(ctx, "用户登录成功",
		logger.Int64("account_id", resp.UserInfo.ID),
		logger.String("token", utils.MaskToken(resp.Token)),
	)
	result.Success(c, resp)
}
