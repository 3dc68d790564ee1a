package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/config"
	"ChatRoom/consts"
	rediskey "ChatRoom/consts/redisKey"
	"ChatRoom/model"
	"ChatRoom/pkg/async"
	"ChatRoom/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
)

func initAsyncPool(t *testing.T) {
	t.Helper()
	require.NoError(t, async.Init(config.DefaultAsyncConfig()))
}

func TestAuthServiceSendRegisterCaptcha(t *testing.T) {
	initServiceTestLogger()
	initAsyncPool(t)

	t.Run("stores_code_and_mails_it", func(t *testing.T) {
		var storedCode string
		var storedTTL, lockTTL time.Duration
		captchaRepo := &fakeCaptchaRepository{
			acquireFn: func(_ context.Context, email string, ttl time.Duration) (bool, error) {
				lockTTL = ttl
				return true, nil
			},
			storeFn: func(_ context.Context, email, code string, ttl time.Duration) error {
				assert.Equal(t, "a@example.com", email)
				storedCode, storedTTL = code, ttl
				return nil
			},
		}
		mailer := newFakeMailer()
		svc := NewAuthService(&fakeUserRepository{}, captchaRepo, mailer, &fakeIssuer{}, 0)

		require.NoError(t, svc.SendRegisterCaptcha(context.Background(), "a@example.com"))
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), storedCode)
		assert.Equal(t, rediskey.RegisterCaptchaTTL, storedTTL)
		assert.Equal(t, rediskey.RegisterCaptchaLockTTL, lockTTL)

		select {
		case msg := <-mailer.sent:
			assert.Equal(t, "a@example.com", msg.To)
			assert.Equal(t, "注册验证码", msg.Subject)
			assert.Contains(t, msg.HTML, storedCode)
		case <-time.After(2 * time.Second):
			t.Fatal("captcha mail not sent")
		}
	})

	t.Run("lock_held", func(t *testing.T) {
		captchaRepo := &fakeCaptchaRepository{
			acquireFn: func(context.Context, string, time.Duration) (bool, error) { return false, nil },
			storeFn: func(context.Context, string, string, time.Duration) error {
				t.Fatal("should not store")
				return nil
			},
		}
		svc := NewAuthService(&fakeUserRepository{}, captchaRepo, newFakeMailer(), &fakeIssuer{}, 0)
		err := svc.SendRegisterCaptcha(context.Background(), "a@example.com")
		requireStatusBizCode(t, err, codes.ResourceExhausted, consts.CodeTooManyRequests)
	})

	t.Run("mailer_not_configured", func(t *testing.T) {
		svc := NewAuthService(&fakeUserRepository{}, &fakeCaptchaRepository{}, nil, &fakeIssuer{}, 0)
		err := svc.SendRegisterCaptcha(context.Background(), "a@example.com")
		requireStatusBizCode(t, err, codes.Unavailable, consts.CodeServiceUnavailable)
	})

	t.Run("captcha_store_not_configured", func(t *testing.T) {
		svc := NewAuthService(&fakeUserRepository{}, nil, newFakeMailer(), &fakeIssuer{}, 0)
		err := svc.SendRegisterCaptcha(context.Background(), "a@example.com")
		requireStatusBizCode(t, err, codes.Unavailable, consts.CodeServiceUnavailable)
	})

	t.Run("redis_failure", func(t *testing.T) {
		captchaRepo := &fakeCaptchaRepository{
			acquireFn: func(context.Context, string, time.Duration) (bool, error) { return false, repository.ErrRedis },
		}
		svc := NewAuthService(&fakeUserRepository{}, captchaRepo, newFakeMailer(), &fakeIssuer{}, 0)
		err := svc.SendRegisterCaptcha(context.Background(), "a@example.com")
		requireStatusBizCode(t, err, codes.Internal, consts.CodeInternalError)
	})
}

func TestAuthServiceRegister(t *testing.T) {
	initServiceTestLogger()

	validReq := func() *dto.RegisterRequest {
		return &dto.RegisterRequest{
			Username: "alice",
			NickName: "Alice",
			Password: "secret1",
			Email:    "a@example.com",
			Captcha:  "123456",
		}
	}

	tests := []struct {
		name         string
		captcha      string
		captchaErr   error
		exists       bool
		createErr    error
		wantGRPCCode codes.Code
		wantBizCode  int
		wantDeleted  bool
	}{
		{name: "captcha_expired", captchaErr: repository.ErrRedisNil, wantGRPCCode: codes.InvalidArgument, wantBizCode: consts.CodeVerifyCodeExpire},
		{name: "captcha_mismatch", captcha: "000000", wantGRPCCode: codes.InvalidArgument, wantBizCode: consts.CodeVerifyCodeError},
		{name: "captcha_store_failure", captchaErr: repository.ErrRedis, wantGRPCCode: codes.Internal, wantBizCode: consts.CodeInternalError},
		{name: "username_taken", captcha: "123456", exists: true, wantGRPCCode: codes.AlreadyExists, wantBizCode: consts.CodeUserAlreadyExist},
		{name: "username_taken_concurrently", captcha: "123456", createErr: repository.ErrDuplicateKey, wantGRPCCode: codes.AlreadyExists, wantBizCode: consts.CodeUserAlreadyExist},
		{name: "success", captcha: "123456", wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted bool
			var created *model.User

			captchaRepo := &fakeCaptchaRepository{
				getFn: func(context.Context, string) (string, error) { return tt.captcha, tt.captchaErr },
				deleteFn: func(_ context.Context, email string) error {
					deleted = true
					return nil
				},
			}
			userRepo := &fakeUserRepository{
				existsByUsernameFn: func(context.Context, string) (bool, error) { return tt.exists, nil },
				createFn: func(_ context.Context, user *model.User) (*model.User, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					user.ID = 9
					created = user
					return user, nil
				},
			}

			svc := NewAuthService(userRepo, captchaRepo, newFakeMailer(), &fakeIssuer{}, 0)
			profile, err := svc.Register(context.Background(), validReq())

			if tt.wantBizCode != 0 {
				requireStatusBizCode(t, err, tt.wantGRPCCode, tt.wantBizCode)
				assert.Nil(t, profile)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(9), profile.ID)
				assert.Equal(t, "Alice", profile.NickName)
				require.NotNil(t, created)
				assert.NotEqual(t, "secret1", created.Password)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")))
			}
			assert.Equal(t, tt.wantDeleted, deleted)
		})
	}

	t.Run("captcha_store_not_configured", func(t *testing.T) {
		var creates int
		userRepo := &fakeUserRepository{
			createFn: func(_ context.Context, user *model.User) (*model.User, error) {
				creates++
				return user, nil
			},
		}
		svc := NewAuthService(userRepo, nil, nil, &fakeIssuer{}, 0)

		profile, err := svc.Register(context.Background(), validReq())
		requireStatusBizCode(t, err, codes.Unavailable, consts.CodeServiceUnavailable)
		assert.Nil(t, profile)
		assert.Zero(t, creates)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	initServiceTestLogger()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	alice := &model.User{ID: 7, Username: "alice", NickName: "Alice", Password: string(hashed)}

	codec, err := token.NewCodec("test-secret")
	require.NoError(t, err)

	userRepo := &fakeUserRepository{
		getByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return alice, nil
			}
			return nil, repository.ErrRecordNotFound
		},
	}
	svc := NewAuthService(userRepo, &fakeCaptchaRepository{}, nil, codec, 0)

	t.Run("success_issues_verifiable_token", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.UserInfo.Username)

		identity, err := codec.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), identity.AccountID)
		assert.InDelta(t, token.DefaultTTL.Seconds(), identity.Remaining(time.Now()).Seconds(), 5)
	})

	t.Run("unknown_user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "x"})
		requireStatusBizCode(t, err, codes.NotFound, consts.CodeUserNotFound)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "nope"})
		requireStatusBizCode(t, err, codes.Unauthenticated, consts.CodePasswordError)
	})

	t.Run("issue_failure", func(t *testing.T) {
		failing := NewAuthService(userRepo, &fakeCaptchaRepository{}, nil, &fakeIssuer{
			issueFn: func(int64, string, time.Duration) (string, error) { return "", errors.New("sign failed") },
		}, 0)
		_, err := failing.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret1"})
		requireStatusBizCode(t, err, codes.Internal, consts.CodeInternalError)
	})
}
