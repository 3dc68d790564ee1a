package dto

import "time"

// ==================== 通用 DTO 定义 ====================

// PublicProfile 账号的对外资料，不包含密码等敏感字段
type PublicProfile struct {
	ID         int64     `json:"id"`         // 账号id
	Username   string    `json:"username"`   // 用户名
	NickName   string    `json:"nickName"`   // 昵称
	Email      string    `json:"email"`      // 邮箱
	HeadPic    string    `json:"headPic"`    // 头像地址
	CreateTime time.Time `json:"createTime"` // 注册时间
}
