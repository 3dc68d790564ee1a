package repository

import (
	"context"
	"time"

	"ChatRoom/model"
)

// ==================== 用户 Repository ====================

// IUserRepository 账号数据访问接口
type IUserRepository interface {
	// GetByUsername 根据用户名查询账号，不存在返回 ErrRecordNotFound
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID 根据 id 查询账号，不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// BatchGetByIDs 批量查询账号，结果按 ids 顺序排列，不存在的 id 直接跳过
	BatchGetByIDs(ctx context.Context, ids []int64) ([]*model.User, error)

	// ExistsByUsername 用户名是否已被占用
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create 创建账号，用户名冲突返回 ErrDuplicateKey
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateProfile 更新昵称和头像，空串表示不修改
	UpdateProfile(ctx context.Context, id int64, nickName, headPic string) error

	// UpdateAvatar 更新头像地址
	UpdateAvatar(ctx context.Context, id int64, headPic string) error

	// UpdatePassword 更新密码哈希
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// ==================== 好友申请 Repository ====================

// FriendRequestFilter 好友申请查询条件，零值字段不参与过滤
type FriendRequestFilter struct {
	FromUserID int64
	ToUserID   int64
	Status     *model.FriendRequestStatus
}

// IApplyRepository 好友申请数据访问接口
type IApplyRepository interface {
	// FindFriendRequests 按条件查询申请，按创建时间倒序
	FindFriendRequests(ctx context.Context, filter FriendRequestFilter) ([]*model.FriendRequest, error)

	// Create 创建好友申请，ID 为空时自动生成雪花 id
	Create(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error)

	// UpdateStatus 把 (from, to) 之间所有 oldStatus 的申请批量改为 newStatus，返回影响行数
	UpdateStatus(ctx context.Context, fromUserID, toUserID int64, oldStatus, newStatus model.FriendRequestStatus) (int64, error)
}

// ==================== 好友关系 Repository ====================

// FriendshipFilter 好友关系查询条件
// Either 非零时匹配 user_id 或 friend_id 任一侧等于该值的行，与 UserID/FriendID 为 AND 关系。
type FriendshipFilter struct {
	UserID   int64
	FriendID int64
	Either   int64
}

// IFriendRepository 好友关系数据访问接口
type IFriendRepository interface {
	// FindFriendships 按条件查询好友关系
	FindFriendships(ctx context.Context, filter FriendshipFilter) ([]*model.Friendship, error)

	// ExistsBetween a 与 b 之间是否存在任一方向的好友关系
	ExistsBetween(ctx context.Context, a, b int64) (bool, error)

	// Create 创建 (userID, friendID) 一行，同一有序对已存在时不报错，返回是否真正插入
	Create(ctx context.Context, userID, friendID int64) (bool, error)

	// Delete 只删除 (userID, friendID) 这一行，返回影响行数
	Delete(ctx context.Context, userID, friendID int64) (int64, error)
}

// ==================== 验证码 Repository ====================

// ICaptchaRepository 注册验证码存取接口
type ICaptchaRepository interface {
	// Store 保存验证码
	Store(ctx context.Context, email, code string, ttl time.Duration) error

	// Get 读取验证码，不存在返回 ErrRedisNil
	Get(ctx context.Context, email string) (string, error)

	// Delete 消耗验证码
	Delete(ctx context.Context, email string) error

	// AcquireSendLock 抢占发送锁，锁已被持有返回 false
	AcquireSendLock(ctx context.Context, email string, ttl time.Duration) (bool, error)
}
