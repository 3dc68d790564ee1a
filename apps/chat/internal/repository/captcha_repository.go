package repository

import (
	"context"
	"time"

	rediskey "ChatRoom/consts/redisKey"

	"github.com/redis/go-redis/v9"
)

// captchaRepositoryImpl 注册验证码存取实现，数据只落 Redis
type captchaRepositoryImpl struct {
	redisClient *redis.Client
}

// NewCaptchaRepository 创建验证码仓储实例
func NewCaptchaRepository(redisClient *redis.Client) ICaptchaRepository {
	return &captchaRepositoryImpl{redisClient: redisClient}
}

// Store 保存验证码，覆盖旧值并重置有效期
func (r *captchaRepositoryImpl) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	err := r.redisClient.Set(ctx, rediskey.RegisterCaptchaKey(email), code, ttl).Err()
	return WrapRedisError(err)
}

// Get 读取验证码
func (r *captchaRepositoryImpl) Get(ctx context.Context, email string) (string, error) {
	code, err := r.redisClient.Get(ctx, rediskey.RegisterCaptchaKey(email)).Result()
	if err != nil {
		return "", WrapRedisError(err)
	}
	return code, nil
}

// Delete 删除验证码
func (r *captchaRepositoryImpl) Delete(ctx context.Context, email string) error {
	err := r.redisClient.Del(ctx, rediskey.RegisterCaptchaKey(email)).Err()
	return WrapRedisError(err)
}

// AcquireSendLock 通过 SETNX 抢占发送间隔锁
func (r *captchaRepositoryImpl) AcquireSendLock(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	ok, err := r.redisClient.SetNX(ctx, rediskey.RegisterCaptchaLockKey(email), 1, ttl).Result()
	if err != nil {
		return false, WrapRedisError(err)
	}
	return ok, nil
}
