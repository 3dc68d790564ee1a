package v1

import (
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/service"
	"ChatRoom/consts"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/result"

	"github.com/gin-gonic/gin"
)

// avatarFormField 上传头像的表单字段
const avatarFormField = "file"

// UserHandler 个人资料处理器
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建个人资料处理器
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile 获取个人资料
// @Router /api/v1/user/info [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(ctx, accountID)
	if err != nil {
		failWithError(ctx, c, err, "获取个人资料服务内部错误")
		return
	}
	result.Success(c, profile)
}

// UpdateProfile 更新昵称、头像地址
// @Router /api/v1/user/info [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	profile, err := h.userService.UpdateProfile(ctx, accountID, &req)
	if err != nil {
		failWithError(ctx, c, err, "更新个人资料服务内部错误")
		return
	}
	result.Success(c, profile)
}

// ChangePassword 修改密码
// @Router /api/v1/user/update-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.userService.ChangePassword(ctx, accountID, &req); err != nil {
		failWithError(ctx, c, err, "修改密码服务内部错误")
		return
	}
	result.SuccessWithMessage(c, nil, "密码修改成功")
}

// UploadAvatar 上传头像
// 文件大小与类型由存储层校验。
// @Router /api/v1/user/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	// 1. 读取上传文件
	file, header, err := c.Request.FormFile(avatarFormField)
	if err != nil {
		logger.Warn(ctx, "无法读取上传的文件",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	defer file.Close()

	// 2. 上传并更新资料
	resp, err := h.userService.UploadAvatar(ctx, accountID, header.Filename, file, header.Size)
	if err != nil {
		failWithError(ctx, c, err, "上传头像服务内部错误")
		return
	}
	result.Success(c, resp)
}
