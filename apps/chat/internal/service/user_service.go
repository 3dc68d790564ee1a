package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"ChatRoom/apps/chat/internal/converter"
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/consts"
	"ChatRoom/pkg/async"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/minio"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// userServiceImpl 用户信息服务实现
type userServiceImpl struct {
	userRepo repository.IUserRepository
	storage  AvatarStorage
}

// NewUserService 创建用户信息服务实例，storage 为 nil 时头像上传不可用
func NewUserService(userRepo repository.IUserRepository, storage AvatarStorage) UserService {
	return &userServiceImpl{userRepo: userRepo, storage: storage}
}

// GetProfile 获取个人资料
func (s *userServiceImpl) GetProfile(ctx context.Context, accountID int64) (*dto.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, strconv.Itoa(consts.CodeUserNotFound))
		}
		logger.Error(ctx, "查询用户失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	return converter.UserToPublicProfile(user), nil
}

// UpdateProfile 更新资料并返回最新资料
func (s *userServiceImpl) UpdateProfile(ctx context.Context, accountID int64, req *dto.UpdateProfileRequest) (*dto.PublicProfile, error) {
	if err := s.userRepo.UpdateProfile(ctx, accountID, req.NickName, req.HeadPic); err != nil {
		logger.Error(ctx, "更新用户资料失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	return s.GetProfile(ctx, accountID)
}

// ChangePassword 修改密码
// 错误码映射：
//   - codes.NotFound: 用户不存在
//   - codes.Unauthenticated: 旧密码错误
//   - codes.Internal: 系统内部错误
func (s *userServiceImpl) ChangePassword(ctx context.Context, accountID int64, req *dto.ChangePasswordRequest) error {
	// 1. 校验旧密码
	user, err := s.userRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return status.Error(codes.NotFound, strconv.Itoa(consts.CodeUserNotFound))
		}
		logger.Error(ctx, "查询用户失败", logger.ErrorField("error", err))
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodePasswordError))
	}

	// 2. 写入新密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error(ctx, "生成密码哈希失败", logger.ErrorField("error", err))
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if err := s.userRepo.UpdatePassword(ctx, accountID, string(hashed)); err != nil {
		logger.Error(ctx, "更新密码失败", logger.ErrorField("error", err))
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	logger.Info(ctx, "密码修改成功")
	return nil
}

// UploadAvatar 上传头像
// 业务流程：
//  1. 上传到对象存储（大小、类型校验在存储层完成）
//  2. 更新用户头像地址
//  3. 异步删除旧头像
func (s *userServiceImpl) UploadAvatar(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*dto.UploadAvatarResponse, error) {
	if s.storage == nil {
		return nil, status.Error(codes.Unavailable, strconv.Itoa(consts.CodeServiceUnavailable))
	}

	user, err := s.userRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, strconv.Itoa(consts.CodeUserNotFound))
		}
		logger.Error(ctx, "查询用户失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 1. 上传
	uploaded, err := s.storage.UploadAvatar(ctx, accountID, fileName, reader, size)
	if err != nil {
		if errors.Is(err, minio.ErrFileTooLarge) || errors.Is(err, minio.ErrTypeNotAllowed) {
			return nil, status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeParamError))
		}
		logger.Error(ctx, "头像上传失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeAvatarUploadError))
	}

	// 2. 更新资料
	if err := s.userRepo.UpdateAvatar(ctx, accountID, uploaded.URL); err != nil {
		logger.Error(ctx, "更新头像地址失败",
			logger.String("object", uploaded.ObjectName),
			logger.ErrorField("error", err),
		)
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 3. 旧头像不属于本 bucket 时 ObjectNameFromURL 返回空串，跳过
	if old := s.storage.ObjectNameFromURL(user.HeadPic); old != "" {
		storage := s.storage
		async.RunSafe(ctx, func(runCtx context.Context) {
			if err := storage.Delete(runCtx, old); err != nil {
				logger.Warn(runCtx, "删除旧头像失败",
					logger.String("object", old),
					logger.ErrorField("error", err),
				)
			}
		}, 10*time.Second)
	}

	return &dto.UploadAvatarResponse{URL: uploaded.URL}, nil
}
