package dto

// ==================== 账号相关 DTO ====================

// RegisterCaptchaRequest 发送注册验证码请求
type RegisterCaptchaRequest struct {
	Address string `form:"address" binding:"required,email"` // 接收验证码的邮箱
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	NickName string `json:"nickName" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=6,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	UserInfo *PublicProfile `json:"userInfo"`
	Token    string         `json:"token"`
}

// UpdateProfileRequest 更新资料请求，空字段不修改
type UpdateProfileRequest struct {
	NickName string `json:"nickName" binding:"omitempty,max=50"`
	HeadPic  string `json:"headPic" binding:"omitempty,max=255"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=50"`
}

// UploadAvatarResponse 上传头像响应
type UploadAvatarResponse struct {
	URL string `json:"url"`
}
