package repository

import (
	"context"

	"ChatRoom/model"
	"ChatRoom/pkg/util"

	"gorm.io/gorm"
)

// applyRepositoryImpl 好友申请数据访问层实现
type applyRepositoryImpl struct {
	db *gorm.DB
}

// NewApplyRepository 创建好友申请仓储实例
func NewApplyRepository(db *gorm.DB) IApplyRepository {
	return &applyRepositoryImpl{db: db}
}

// FindFriendRequests 按条件查询好友申请
func (r *applyRepositoryImpl) FindFriendRequests(ctx context.Context, filter FriendRequestFilter) ([]*model.FriendRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.FriendRequest{})
	if filter.FromUserID != 0 {
		query = query.Where("from_user_id = ?", filter.FromUserID)
	}
	if filter.ToUserID != 0 {
		query = query.Where("to_user_id = ?", filter.ToUserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var requests []*model.FriendRequest
	// 雪花 id 单调递增，作为同一秒内的次级排序
	if err := query.Order("create_time DESC").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return requests, nil
}

// Create 创建好友申请
func (r *applyRepositoryImpl) Create(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error) {
	if req.ID == 0 {
		req.ID = util.GenID()
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return req, nil
}

// UpdateStatus 批量迁移 (from, to) 之间处于 oldStatus 的申请
func (r *applyRepositoryImpl) UpdateStatus(ctx context.Context, fromUserID, toUserID int64, oldStatus, newStatus model.FriendRequestStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.FriendRequest{}).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", fromUserID, toUserID, oldStatus).
		Update("status", newStatus)
	if res.Error != nil {
		return 0, WrapDBError(res.Error)
	}
	return res.RowsAffected, nil
}
