package model

import "time"

// FriendRequestStatus 好友申请状态
type FriendRequestStatus int8

const (
	FriendRequestPending  FriendRequestStatus = 0 // 待处理
	FriendRequestAccepted FriendRequestStatus = 1 // 已同意
	FriendRequestRejected FriendRequestStatus = 2 // 已拒绝
)

// FriendRequest 好友申请（有向）
// 约束：只做状态迁移不做物理删除；同一有序对的 Pending 唯一性由业务层检查保证，表上不加唯一索引。
type FriendRequest struct {
	ID         int64               `gorm:"column:id;primaryKey;autoIncrement:false;comment:雪花id"`
	FromUserID int64               `gorm:"column:from_user_id;not null;index:idx_from_to_status;comment:申请人id"`
	ToUserID   int64               `gorm:"column:to_user_id;not null;index:idx_from_to_status;index:idx_to_user;comment:被申请人id"`
	Reason     string              `gorm:"column:reason;type:varchar(100);not null;default:'';comment:添加理由"`
	Status     FriendRequestStatus `gorm:"column:status;not null;default:0;index:idx_from_to_status;comment:状态 0.待处理 1.已同意 2.已拒绝"`
	CreateTime time.Time           `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time           `gorm:"column:update_time;autoUpdateTime"`
}

func (FriendRequest) TableName() string { return "friend_requests" }
