package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"ChatRoom/config"
	"ChatRoom/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

// ErrNotInitialized 协程池尚未初始化
var ErrNotInitialized = errors.New("async pool not initialized")

var (
	global     *ants.Pool
	globalMu   sync.RWMutex
	releaseTTL time.Duration

	propagator func(parent context.Context) context.Context
)

// SetContextPropagator 注入上下文透传函数，异步任务通过它继承 trace_id、账号等元数据。
// 需在 main 初始化阶段调用。
func SetContextPropagator(fn func(context.Context) context.Context) {
	globalMu.Lock()
	propagator = fn
	globalMu.Unlock()
}

// Build 根据配置创建协程池
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithPanicHandler(func(p any) {
			logger.Error(context.Background(), "异步任务 panic",
				logger.Any("panic", p),
				logger.String("stack", string(debug.Stack())),
			)
		}),
	}
	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init 初始化全局协程池，重复调用无副作用
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}
	p, err := Build(cfg)
	if err != nil {
		return err
	}
	global = p
	releaseTTL = cfg.ReleaseTimeout
	return nil
}

// Submit 投递任务到全局协程池
func Submit(task func()) error {
	globalMu.RLock()
	p := global
	globalMu.RUnlock()

	if p == nil {
		return ErrNotInitialized
	}
	return p.Submit(task)
}

// Release 释放协程池，ReleaseTimeout > 0 时等待在途任务完成
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}
	var err error
	if releaseTTL > 0 {
		err = global.ReleaseTimeout(releaseTTL)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe 在协程池中执行 task。
// task 拿到的 ctx 脱离请求生命周期，只继承元数据，并受 timeout 约束（<=0 时为 1 分钟）。
// 投递失败只记录日志，不会回退到同步执行。
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	globalMu.RLock()
	detach := propagator
	globalMu.RUnlock()

	baseCtx := context.Background()
	if detach != nil && ctx != nil {
		baseCtx = detach(ctx)
	}
	runCtx, cancel := context.WithTimeout(baseCtx, timeout)

	wrap := func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(runCtx, "异步任务 panic",
					logger.Any("panic", r),
					logger.String("stack", string(debug.Stack())),
				)
			}
		}()

		task(runCtx)

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Warn(runCtx, "异步任务超时", logger.Duration("timeout", timeout))
		}
	}

	if err := Submit(wrap); err != nil {
		cancel()
		logger.Error(baseCtx, "异步任务投递失败",
			logger.ErrorField("error", err),
			logger.Duration("timeout", timeout),
		)
	}
}
