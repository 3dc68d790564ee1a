package v1

import (
	"context"
	"net/http"

	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/notify"
	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/pkg/ctxmeta"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/result"
	"ChatRoom/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// 来源由前置网关校验
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// TokenAuthenticator 校验握手凭证，由 middleware.SessionGuard 实现
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, raw string) (*token.Identity, string, error)
}

// WSHandler websocket 接入
type WSHandler struct {
	hub  *notify.Hub
	auth TokenAuthenticator
}

// NewWSHandler 创建 websocket 接入处理器
func NewWSHandler(hub *notify.Hub, auth TokenAuthenticator) *WSHandler {
	return &WSHandler{hub: hub, auth: auth}
}

// ServeWS 握手与接入
//  1. 浏览器无法在握手时带 Authorization，凭证从 ?token= 读取
//  2. 校验通过后构造连接级 context，续签凭证通过 101 响应的 New-Token 头下发
//  3. 升级协议并进入连接主循环
//
// @Router /api/v1/ws [get]
func (h *WSHandler) ServeWS(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	identity, fresh, err := h.auth.AuthenticateToken(ctx, c.Query("token"))
	if err != nil {
		result.AbortWithStatus(c, http.StatusUnauthorized, utils.ExtractErrorCode(err))
		return
	}

	// 连接生命周期长于请求，不能继承请求的取消信号
	connCtx := ctxmeta.WithAccount(ctxmeta.Detach(ctx), ctxmeta.Account{
		AccountID: identity.AccountID,
		Username:  identity.Username,
		ExpiresAt: identity.ExpiresAt,
	})

	var header http.Header
	if fresh != "" {
		header = http.Header{middleware.HeaderNewToken: []string{fresh}}
	}
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		// Upgrade 失败时已经写过 HTTP 错误响应
		logger.Warn(connCtx, "WebSocket 升级失败",
			logger.ErrorField("error", err),
		)
		return
	}

	h.handleConnection(connCtx, conn, identity.AccountID)
}

func (h *WSHandler) handleConnection(ctx context.Context, conn *websocket.Conn, accountID int64) {
	client := notify.NewClient(conn, accountID)
	if !h.hub.Register(client) {
		// 进程正在退出
		_ = conn.Close()
		return
	}

	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("conn_id", client.ID()),
		logger.Int("online_count", h.hub.Count()),
	)

	client.Run(ctx, func(raw []byte) {
		h.handleMessage(ctx, client, raw)
	}, func() {
		h.hub.Unregister(client)
		logger.Info(ctx, "WebSocket 连接已断开",
			logger.String("conn_id", client.ID()),
			logger.Int("online_count", h.hub.Count()),
		)
	})
}

// handleMessage 上行帧只处理心跳，其余类型回错误帧
func (h *WSHandler) handleMessage(ctx context.Context, client *notify.Client, raw []byte) {
	env, err := notify.ParseEnvelope(raw)
	if err != nil {
		h.sendErrorFrame(ctx, client, notify.FrameInvalidFormatCode, "invalid frame format")
		return
	}

	switch env.Type {
	case notify.TypeHeartbeat:
		ack, err := notify.MarshalEnvelope(notify.TypeHeartbeatAck, nil)
		if err != nil {
			logger.Warn(ctx, "心跳应答序列化失败", logger.ErrorField("error", err))
			return
		}
		if !client.Enqueue(ack) {
			client.Close()
		}
	default:
		h.sendErrorFrame(ctx, client, notify.FrameUnsupportedCode, "unsupported message type")
	}
}

// sendErrorFrame 写入失败说明连接已不可写，直接关闭
func (h *WSHandler) sendErrorFrame(ctx context.Context, client *notify.Client, code int, message string) {
	payload, err := notify.MarshalEnvelope(notify.TypeError, notify.ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		logger.Warn(ctx, "错误帧序列化失败",
			logger.Int("code", code),
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(payload) {
		client.Close()
	}
}
