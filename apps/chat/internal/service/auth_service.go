package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"ChatRoom/apps/chat/internal/converter"
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/consts"
	rediskey "ChatRoom/consts/redisKey"
	"ChatRoom/model"
	"ChatRoom/pkg/async"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/mail"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const captchaMailTimeout = 30 * time.Second

// authServiceImpl 认证服务实现
type authServiceImpl struct {
	userRepo    repository.IUserRepository
	captchaRepo repository.ICaptchaRepository
	mailer      MailSender
	issuer      TokenIssuer
	tokenTTL    time.Duration
}

// NewAuthService 创建认证服务实例
// mailer 为 nil 时发送验证码返回服务不可用，tokenTTL <= 0 时使用凭证默认有效期。
func NewAuthService(
	userRepo repository.IUserRepository,
	captchaRepo repository.ICaptchaRepository,
	mailer MailSender,
	issuer TokenIssuer,
	tokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		captchaRepo: captchaRepo,
		mailer:      mailer,
		issuer:      issuer,
		tokenTTL:    tokenTTL,
	}
}

// SendRegisterCaptcha 发送注册验证码
// 业务流程：
//  1. 抢占 1 分钟发送锁，防止同一邮箱被刷
//  2. 生成 6 位数字验证码，写入 Redis，有效期 5 分钟
//  3. 协程池异步投递邮件
//
// 错误码映射：
//   - codes.ResourceExhausted: 发送过于频繁
//   - codes.Unavailable: 未配置邮件服务
//   - codes.Internal: Redis 错误
func (s *authServiceImpl) SendRegisterCaptcha(ctx context.Context, email string) error {
	if s.mailer == nil || s.captchaRepo == nil {
		return status.Error(codes.Unavailable, strconv.Itoa(consts.CodeServiceUnavailable))
	}

	// 1. 发送锁
	acquired, err := s.captchaRepo.AcquireSendLock(ctx, email, rediskey.RegisterCaptchaLockTTL)
	if err != nil {
		logger.Error(ctx, "获取验证码发送锁失败",
			logger.String("email", utils.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if !acquired {
		return status.Error(codes.ResourceExhausted, strconv.Itoa(consts.CodeTooManyRequests))
	}

	// 2. 生成并保存验证码
	code, err := generateCaptcha()
	if err != nil {
		logger.Error(ctx, "生成验证码失败", logger.ErrorField("error", err))
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if err := s.captchaRepo.Store(ctx, email, code, rediskey.RegisterCaptchaTTL); err != nil {
		logger.Error(ctx, "保存验证码失败",
			logger.String("email", utils.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 3. 异步发送，失败只记日志（用户可在锁过期后重新获取）
	mailer := s.mailer
	async.RunSafe(ctx, func(runCtx context.Context) {
		err := mailer.Send(runCtx, mail.Message{
			To:      email,
			Subject: "注册验证码",
			HTML:    fmt.Sprintf("<p>你的注册验证码是 %s</p>", code),
		})
		if err != nil {
			logger.Error(runCtx, "注册验证码邮件发送失败",
				logger.String("email", utils.MaskEmail(email)),
				logger.ErrorField("error", err),
			)
		}
	}, captchaMailTimeout)

	return nil
}

// Register 用户注册
// 业务流程：
//  1. 校验验证码
//  2. 用户名查重
//  3. 哈希密码并创建用户
//  4. 消耗验证码
//
// 错误码映射：
//   - codes.InvalidArgument: 验证码失效或不正确
//   - codes.AlreadyExists: 用户名已存在
//   - codes.Unavailable: 未配置 Redis，无法校验验证码
//   - codes.Internal: 系统内部错误
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.PublicProfile, error) {
	logger.Info(ctx, "用户注册请求",
		logger.String("username", req.Username),
		logger.String("email", utils.MaskEmail(req.Email)),
	)

	// 1. 校验验证码
	if s.captchaRepo == nil {
		return nil, status.Error(codes.Unavailable, strconv.Itoa(consts.CodeServiceUnavailable))
	}
	stored, err := s.captchaRepo.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrRedisNil) {
			return nil, status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeVerifyCodeExpire))
		}
		logger.Error(ctx, "读取验证码失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if stored != req.Captcha {
		return nil, status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeVerifyCodeError))
	}

	// 2. 用户名查重
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		logger.Error(ctx, "检查用户名失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if exists {
		return nil, status.Error(codes.AlreadyExists, strconv.Itoa(consts.CodeUserAlreadyExist))
	}

	// 3. 创建用户
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error(ctx, "生成密码哈希失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	user, err := s.userRepo.Create(ctx, &model.User{
		Username: req.Username,
		Password: string(hashedPassword),
		NickName: req.NickName,
		Email:    req.Email,
	})
	if err != nil {
		// 查重与插入之间被并发抢注
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, status.Error(codes.AlreadyExists, strconv.Itoa(consts.CodeUserAlreadyExist))
		}
		logger.Error(ctx, "创建用户失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 4. 消耗验证码，失败不影响注册结果
	if err := s.captchaRepo.Delete(ctx, req.Email); err != nil {
		repository.LogRedisError(ctx, err)
	}

	return converter.UserToPublicProfile(user), nil
}

// Login 用户登录
// 错误码映射：
//   - codes.NotFound: 用户不存在
//   - codes.Unauthenticated: 密码错误
//   - codes.Internal: 系统内部错误
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 查询用户
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, strconv.Itoa(consts.CodeUserNotFound))
		}
		logger.Error(ctx, "查询用户失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodePasswordError))
	}

	// 3. 签发会话凭证
	accessToken, err := s.issuer.Issue(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		logger.Error(ctx, "签发会话凭证失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	logger.Info(ctx, "用户登录成功", logger.Int64("account_id", user.ID))

	return &dto.LoginResponse{
		UserInfo: converter.UserToPublicProfile(user),
		Token:    accessToken,
	}, nil
}

// generateCaptcha 生成 6 位数字验证码
func generateCaptcha() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
