package repository

import (
	"context"

	"ChatRoom/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// friendRepositoryImpl 好友关系数据访问层实现
type friendRepositoryImpl struct {
	db *gorm.DB
}

// NewFriendRepository 创建好友关系仓储实例
func NewFriendRepository(db *gorm.DB) IFriendRepository {
	return &friendRepositoryImpl{db: db}
}

// FindFriendships 按条件查询好友关系，按建立时间升序
func (r *friendRepositoryImpl) FindFriendships(ctx context.Context, filter FriendshipFilter) ([]*model.Friendship, error) {
	query := r.db.WithContext(ctx).Model(&model.Friendship{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.FriendID != 0 {
		query = query.Where("friend_id = ?", filter.FriendID)
	}
	if filter.Either != 0 {
		query = query.Where("user_id = ? OR friend_id = ?", filter.Either, filter.Either)
	}

	var rows []*model.Friendship
	if err := query.Order("create_time ASC").Find(&rows).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return rows, nil
}

// ExistsBetween 检查两人之间任一方向是否存在好友关系
func (r *friendRepositoryImpl) ExistsBetween(ctx context.Context, a, b int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// Create 插入 (userID, friendID)
// 并发场景下同一有序对的重复插入由联合主键吸收，不视为错误。
func (r *friendRepositoryImpl) Create(ctx context.Context, userID, friendID int64) (bool, error) {
	row := &model.Friendship{UserID: userID, FriendID: friendID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, WrapDBError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除 (userID, friendID) 一行，镜像行 (friendID, userID) 不受影响
func (r *friendRepositoryImpl) Delete(ctx context.Context, userID, friendID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return 0, WrapDBError(res.Error)
	}
	return res.RowsAffected, nil
}
