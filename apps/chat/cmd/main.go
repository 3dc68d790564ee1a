package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/notify"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/apps/chat/internal/router"
	v1 "ChatRoom/apps/chat/internal/router/v1"
	"ChatRoom/apps/chat/internal/service"
	"ChatRoom/config"
	"ChatRoom/model"
	"ChatRoom/pkg/async"
	"ChatRoom/pkg/ctxmeta"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/mail"
	pkgminio "ChatRoom/pkg/minio"
	pkgmysql "ChatRoom/pkg/mysql"
	pkgredis "ChatRoom/pkg/redis"
	"ChatRoom/pkg/token"
	"ChatRoom/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（YAML），为空时只使用默认值和环境变量")
	flag.Parse()

	// 启动阶段的日志统一使用 trace_id=0
	ctx := ctxmeta.WithTraceID(context.Background(), "0")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	l, err := logger.Build(cfg.Logger)
	if err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		// stdout 上 Sync 可能返回错误，忽略
		_ = logger.L().Sync()
	}()

	logger.Info(ctx, "ChatRoom 服务初始化中...")

	// 3. 雪花 ID 与协程池
	if err := util.InitSnowflake(cfg.Server.NodeID); err != nil {
		logger.Fatal(ctx, "初始化雪花算法节点失败", logger.ErrorField("error", err))
	}
	async.SetContextPropagator(ctxmeta.Detach)
	if err := async.Init(cfg.Async); err != nil {
		logger.Fatal(ctx, "初始化协程池失败", logger.ErrorField("error", err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(ctx, "释放协程池失败", logger.ErrorField("error", err))
		}
	}()

	// 4. MySQL（必需）
	db, err := pkgmysql.Build(cfg.MySQL)
	if err != nil {
		logger.Fatal(ctx, "初始化 MySQL 失败", logger.ErrorField("error", err))
	}
	pkgmysql.ReplaceGlobal(db)
	defer func() {
		if err := pkgmysql.Close(db); err != nil {
			logger.Warn(ctx, "关闭 MySQL 连接失败", logger.ErrorField("error", err))
		}
	}()
	if cfg.MySQL.AutoMigrate {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal(ctx, "数据表迁移失败", logger.ErrorField("error", err))
		}
	}
	logger.Info(ctx, "MySQL 初始化成功", logger.Int("replicas", len(cfg.MySQL.Replicas)))

	// 5. Redis（可选，不可用时验证码不可用、限流降级为本地）
	var redisClient *redis.Client
	if client, err := pkgredis.Build(cfg.Redis); err != nil {
		logger.Error(ctx, "初始化 Redis 失败，限流降级为本地",
			logger.ErrorField("error", err),
		)
	} else {
		redisClient = client
		pkgredis.ReplaceGlobal(client)
		defer func() { _ = client.Close() }()
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
	}

	// 6. 邮件与对象存储（可选）
	// 注意：nil 指针不能直接赋给接口，否则 service 层的 nil 判断失效
	var mailer service.MailSender
	if m, err := mail.Build(cfg.Email); err != nil {
		logger.Warn(ctx, "邮件服务未启用，注册验证码不可用", logger.ErrorField("error", err))
	} else {
		mailer = m
	}

	var avatarStorage service.AvatarStorage
	if cfg.MinIO.Enabled {
		if s, err := pkgminio.Build(cfg.MinIO); err != nil {
			logger.Error(ctx, "初始化 MinIO 失败，头像上传不可用", logger.ErrorField("error", err))
		} else {
			avatarStorage = s
			logger.Info(ctx, "MinIO 初始化成功", logger.String("bucket", cfg.MinIO.BucketName))
		}
	}

	// 7. 会话凭证
	codec, err := token.NewCodec(cfg.JWT.Secret, token.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		logger.Fatal(ctx, "初始化凭证编解码器失败", logger.ErrorField("error", err))
	}
	guard := middleware.NewSessionGuard(codec, cfg.JWT.TTL, cfg.JWT.RefreshWindow)

	// 8. Repository / Service / Handler（依赖注入）
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	applyRepo := repository.NewApplyRepository(db)
	var captchaRepo repository.ICaptchaRepository
	if redisClient != nil {
		captchaRepo = repository.NewCaptchaRepository(redisClient)
	} else {
		// 没有 Redis 时验证码无处存放
		mailer = nil
	}

	hub := notify.NewHub()

	authService := service.NewAuthService(userRepo, captchaRepo, mailer, codec, cfg.JWT.TTL)
	userService := service.NewUserService(userRepo, avatarStorage)
	friendService := service.NewFriendService(userRepo, friendRepo, applyRepo, hub)

	handlers := router.Handlers{
		Auth:   v1.NewAuthHandler(authService),
		User:   v1.NewUserHandler(userService),
		Friend: v1.NewFriendHandler(friendService),
		WS:     v1.NewWSHandler(hub, guard),
	}

	// 9. 限流
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = middleware.NewRateLimiter(cfg.RateLimit, redisClient)
		if err != nil {
			logger.Fatal(ctx, "初始化限流器失败", logger.ErrorField("error", err))
		}
		logger.Info(ctx, "IP 限流器初始化完成",
			logger.Float64("rate", cfg.RateLimit.Rate),
			logger.Int("burst", cfg.RateLimit.Burst),
		)
	}

	// 10. 路由
	gin.SetMode(cfg.Server.Mode)
	r := router.InitRouter(handlers, router.Options{
		Guard:          guard,
		RateLimiter:    limiter,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	// 11. 启动服务器
	// WriteTimeout 不作用于已劫持的 websocket 连接
	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info(ctx, "ChatRoom 服务器启动中", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "服务器启动失败", logger.ErrorField("error", err))
		}
	}()

	// 12. 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(ctx, "收到停机信号，开始优雅停机", logger.String("signal", sig.String()))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 先断开长连接，Shutdown 不会等待已劫持的连接
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "服务器强制关闭", logger.ErrorField("error", err))
		return
	}
	logger.Info(ctx, "ChatRoom 服务器已退出")
}
