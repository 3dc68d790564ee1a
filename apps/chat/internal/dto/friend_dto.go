package dto

import "time"

// ==================== 好友相关 DTO ====================

// AddFriendRequest 发送好友申请请求
type AddFriendRequest struct {
	Username string `json:"username" binding:"required"`         // 目标用户名
	Reason   string `json:"reason" binding:"omitempty,max=100"` // 添加理由
}

// FriendRequestItem 好友申请条目
// 我发出的申请附带 ToUser，我收到的申请附带 FromUser。
type FriendRequestItem struct {
	ID         int64          `json:"id,string"`
	FromUserID int64          `json:"fromUserId"`
	ToUserID   int64          `json:"toUserId"`
	Reason     string         `json:"reason"`
	Status     int8           `json:"status"` // 0:待处理 1:已同意 2:已拒绝
	CreateTime time.Time      `json:"createTime"`
	FromUser   *PublicProfile `json:"fromUser,omitempty"`
	ToUser     *PublicProfile `json:"toUser,omitempty"`
}

// FriendRequestListResponse 好友申请列表
type FriendRequestListResponse struct {
	FromMe []*FriendRequestItem `json:"fromMe"`
	ToMe   []*FriendRequestItem `json:"toMe"`
}

// FriendListRequest 好友列表查询参数
type FriendListRequest struct {
	Name string `form:"name"` // 按昵称子串过滤，区分大小写
}
