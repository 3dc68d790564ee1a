package repository

import (
	"context"

	"ChatRoom/model"

	"gorm.io/gorm"
)

// userRepositoryImpl 账号数据访问层实现
type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository 创建账号仓储实例
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByUsername 根据用户名查询账号
func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// GetByID 根据 id 查询账号
func (r *userRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// BatchGetByIDs 批量查询账号
// 返回结果按传入的 ids 顺序排列，不存在的账号不包含在结果中
func (r *userRepositoryImpl) BatchGetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	var users []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, WrapDBError(err)
	}

	byID := make(map[int64]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*model.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// ExistsByUsername 用户名是否已存在
func (r *userRepositoryImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// Create 创建账号
func (r *userRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return user, nil
}

// UpdateProfile 更新昵称和头像
func (r *userRepositoryImpl) UpdateProfile(ctx context.Context, id int64, nickName, headPic string) error {
	updates := map[string]interface{}{}
	if nickName != "" {
		updates["nick_name"] = nickName
	}
	if headPic != "" {
		updates["head_pic"] = headPic
	}
	if len(updates) == 0 {
		return nil
	}
	return r.updateColumns(ctx, id, updates)
}

// UpdateAvatar 更新头像
func (r *userRepositoryImpl) UpdateAvatar(ctx context.Context, id int64, headPic string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"head_pic": headPic})
}

// UpdatePassword 更新密码
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password": hashedPassword})
}

// updateColumns 按 id 更新指定列
// MySQL 在值未变化时 RowsAffected 为 0，这里不据此判断账号是否存在。
func (r *userRepositoryImpl) updateColumns(ctx context.Context, id int64, updates map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
	return WrapDBError(err)
}
