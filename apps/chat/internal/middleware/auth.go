package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/consts"
	"ChatRoom/pkg/ctxmeta"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/metrics"
	"ChatRoom/pkg/result"
	"ChatRoom/pkg/token"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// HeaderAuthorization 请求头：Bearer 凭证
	HeaderAuthorization = "Authorization"
	// HeaderNewToken 响应头：滑动续期签发的新凭证
	HeaderNewToken = "New-Token"

	sessionKey   = "session"
	accountIDKey = "account_id"
)

// SessionGuard 会话守卫
// 只挂在声明了需要登录的路由上；校验通过后把身份写入 gin 上下文和请求 context，
// 凭证剩余有效期落在 (0, refreshWindow) 内时签发新凭证并通过 New-Token 响应头下发。
type SessionGuard struct {
	codec         *token.Codec
	ttl           time.Duration
	refreshWindow time.Duration
}

// NewSessionGuard 创建会话守卫，ttl 为续签凭证的有效期
func NewSessionGuard(codec *token.Codec, ttl, refreshWindow time.Duration) *SessionGuard {
	if ttl <= 0 {
		ttl = token.DefaultTTL
	}
	if refreshWindow <= 0 {
		refreshWindow = 24 * time.Hour
	}
	return &SessionGuard{codec: codec, ttl: ttl, refreshWindow: refreshWindow}
}

// Authenticate 校验 Authorization 请求头
// 返回身份、续签出的新凭证（无需续签时为空串）以及 Unauthenticated 状态错误。
func (g *SessionGuard) Authenticate(ctx context.Context, authorization string) (*token.Identity, string, error) {
	// 1. 未携带请求头视为未登录，携带了但不是 "Bearer <token>" 视为凭证失效
	if strings.TrimSpace(authorization) == "" {
		return nil, "", status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodeUnauthorized))
	}
	raw, ok := parseBearer(authorization)
	if !ok {
		return nil, "", status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodeInvalidToken))
	}
	return g.AuthenticateToken(ctx, raw)
}

// AuthenticateToken 校验裸凭证，websocket 握手等无法携带请求头的场景使用
func (g *SessionGuard) AuthenticateToken(ctx context.Context, raw string) (*token.Identity, string, error) {
	if raw == "" {
		return nil, "", status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodeUnauthorized))
	}

	// 2. 校验签名与有效期，两种失败对外不做区分
	identity, err := g.codec.Verify(raw)
	if err != nil {
		if !errors.Is(err, token.ErrCredentialExpired) && !errors.Is(err, token.ErrInvalidCredential) {
			logger.Warn(ctx, "凭证校验返回未知错误", logger.ErrorField("error", err))
		}
		return nil, "", status.Error(codes.Unauthenticated, strconv.Itoa(consts.CodeInvalidToken))
	}

	// 3. 滑动续期
	remaining := identity.Remaining(g.codec.Now())
	if remaining <= 0 || remaining >= g.refreshWindow {
		return identity, "", nil
	}
	fresh, err := g.codec.Issue(identity.AccountID, identity.Username, g.ttl)
	if err != nil {
		// 续签失败不影响本次请求
		logger.Error(ctx, "续签会话凭证失败",
			logger.Int64("account_id", identity.AccountID),
			logger.ErrorField("error", err),
		)
		return identity, "", nil
	}
	metrics.SessionRefreshTotal.Inc()
	return identity, fresh, nil
}

// Require 返回需要登录的路由使用的中间件
func (g *SessionGuard) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, fresh, err := g.Authenticate(NewContextWithGin(c), c.GetHeader(HeaderAuthorization))
		if err != nil {
			// 未登录属于正常业务流程，不记录日志
			result.AbortWithStatus(c, http.StatusUnauthorized, utils.ExtractErrorCode(err))
			return
		}

		SetSession(c, identity)
		if fresh != "" {
			c.Header(HeaderNewToken, fresh)
		}
		c.Next()
	}
}

// SetSession 把身份写入 gin 上下文与请求 context
func SetSession(c *gin.Context, identity *token.Identity) {
	c.Set(sessionKey, identity)
	c.Set(accountIDKey, identity.AccountID)
	c.Request = c.Request.WithContext(ctxmeta.WithAccount(c.Request.Context(), ctxmeta.Account{
		AccountID: identity.AccountID,
		Username:  identity.Username,
		ExpiresAt: identity.ExpiresAt,
	}))
}

// GetSession 从 gin 上下文读取当前身份
func GetSession(c *gin.Context) (*token.Identity, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*token.Identity)
	return identity, ok && identity != nil
}

// GetAccountID 从 gin 上下文读取当前账号 id
func GetAccountID(c *gin.Context) (int64, bool) {
	identity, ok := GetSession(c)
	if !ok {
		return 0, false
	}
	return identity.AccountID, true
}

func parseBearer(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
