package router

import (
	"net/http"
	"time"

	"ChatRoom/apps/chat/internal/middleware"
	v1 "ChatRoom/apps/chat/internal/router/v1"
	"ChatRoom/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Auth   *v1.AuthHandler
	User   *v1.UserHandler
	Friend *v1.FriendHandler
	WS     *v1.WSHandler
}

// Options 路由层的基础设施
type Options struct {
	Guard          *middleware.SessionGuard
	RateLimiter    *middleware.RateLimiter // 为 nil 时不限流
	RequestTimeout time.Duration
}

// Route 一条 API 路由，RequireLogin 在注册时决定是否挂会话守卫
type Route struct {
	Method       string
	Path         string
	RequireLogin bool
	Handler      gin.HandlerFunc
}

// APIRoutes /api/v1 下的普通接口
func APIRoutes(h Handlers) []Route {
	return []Route{
		// 账号
		{http.MethodGet, "/user/register-captcha", false, h.Auth.RegisterCaptcha},
		{http.MethodPost, "/user/register", false, h.Auth.Register},
		{http.MethodPost, "/user/login", false, h.Auth.Login},

		// 个人资料
		{http.MethodGet, "/user/info", true, h.User.GetProfile},
		{http.MethodPut, "/user/info", true, h.User.UpdateProfile},
		{http.MethodPost, "/user/update-password", true, h.User.ChangePassword},
		{http.MethodPost, "/user/avatar", true, h.User.UploadAvatar},

		// 好友
		{http.MethodPost, "/friendship/add", true, h.Friend.Add},
		{http.MethodGet, "/friendship/request-list", true, h.Friend.RequestList},
		{http.MethodPost, "/friendship/agree/:id", true, h.Friend.Agree},
		{http.MethodPost, "/friendship/reject/:id", true, h.Friend.Reject},
		{http.MethodGet, "/friendship/list", true, h.Friend.List},
		{http.MethodDelete, "/friendship/:id", true, h.Friend.Remove},
	}
}

// InitRouter 初始化路由
func InitRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	// 让 service 层拿 gin.Context 当 context 用时也能读到请求 context 中的值
	r.ContextWithFallback = true

	r.Use(middleware.GinRecovery(true))
	r.Use(util.TraceLogger())
	r.Use(middleware.ClientIPMiddleware())
	r.Use(middleware.GinLogger())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.CorsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(opts.RateLimiter))

	// 长连接不受请求超时约束，单独注册
	if h.WS != nil {
		api.GET("/ws", h.WS.ServeWS)
	}

	timed := api.Group("")
	timed.Use(middleware.TimeoutMiddleware(opts.RequestTimeout))
	requireLogin := opts.Guard.Require()
	for _, route := range APIRoutes(h) {
		handlers := []gin.HandlerFunc{route.Handler}
		if route.RequireLogin {
			handlers = []gin.HandlerFunc{requireLogin, route.Handler}
		}
		timed.Handle(route.Method, route.Path, handlers...)
	}

	return r
}
