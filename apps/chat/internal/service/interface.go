package service

import (
	"context"
	"io"
	"time"

	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/pkg/mail"
	"ChatRoom/pkg/minio"
)

// ==================== 认证服务接口 ====================

// IAuthService 认证服务接口
// 职责：注册验证码、注册、登录
type IAuthService interface {
	// SendRegisterCaptcha 向邮箱发送注册验证码
	SendRegisterCaptcha(ctx context.Context, email string) error

	// Register 用户注册
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.PublicProfile, error)

	// Login 用户名密码登录，返回资料和会话凭证
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// ==================== 用户信息服务接口 ====================

// IUserService 用户信息服务接口
type IUserService interface {
	// GetProfile 获取个人资料
	GetProfile(ctx context.Context, accountID int64) (*dto.PublicProfile, error)

	// UpdateProfile 更新昵称、头像地址
	UpdateProfile(ctx context.Context, accountID int64, req *dto.UpdateProfileRequest) (*dto.PublicProfile, error)

	// ChangePassword 校验旧密码后修改密码
	ChangePassword(ctx context.Context, accountID int64, req *dto.ChangePasswordRequest) error

	// UploadAvatar 上传头像并更新资料
	UploadAvatar(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*dto.UploadAvatarResponse, error)
}

// ==================== 好友服务接口 ====================

// IFriendService 好友关系服务接口
// 职责：好友申请的发送、查询、同意、拒绝，好友列表与删除
type IFriendService interface {
	// SendRequest 向 username 对应的账号发送好友申请
	SendRequest(ctx context.Context, requesterID int64, req *dto.AddFriendRequest) error

	// ListRequests 查询我发出的和我收到的好友申请
	ListRequests(ctx context.Context, accountID int64) (*dto.FriendRequestListResponse, error)

	// AcceptRequest approver 同意 requester 发来的申请
	AcceptRequest(ctx context.Context, requesterID, approverID int64) error

	// RejectRequest approver 拒绝 requester 发来的申请
	RejectRequest(ctx context.Context, requesterID, approverID int64) error

	// ListFriends 好友列表，nameFilter 非空时按昵称子串过滤
	ListFriends(ctx context.Context, accountID int64, nameFilter string) ([]*dto.PublicProfile, error)

	// RemoveFriend 删除好友
	RemoveFriend(ctx context.Context, accountID, friendID int64) error
}

// 兼容命名
type (
	AuthService   = IAuthService
	UserService   = IUserService
	FriendService = IFriendService
)

// ==================== 外部依赖 ====================

// MailSender 邮件发送能力，由 pkg/mail.Mailer 实现
type MailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// TokenIssuer 会话凭证签发能力，由 pkg/token.Codec 实现
type TokenIssuer interface {
	Issue(accountID int64, username string, ttl time.Duration) (string, error)
}

// AvatarStorage 头像存储能力，由 pkg/minio.Storage 实现
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*minio.UploadResult, error)
	Delete(ctx context.Context, objectName string) error
	ObjectNameFromURL(url string) string
}

// 实时事件类型
const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
)

// Notifier 向在线账号推送实时事件，账号不在线时静默丢弃
type Notifier interface {
	Notify(ctx context.Context, accountID int64, event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, int64, string, any) {}
