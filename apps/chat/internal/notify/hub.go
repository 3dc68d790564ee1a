// Package notify 维护在线 websocket 连接，把好友事件推送给在线账号。
// 推送是尽力而为的：账号不在线或写队列已满时直接丢弃，不做离线存储。
package notify

import (
	"context"
	"sync"

	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/metrics"
)

// Hub 在线连接索引
//   - byID: 连接 id -> client
//   - byAccount: 账号 id -> 连接 id -> client，用于按账号广播
type Hub struct {
	mu        sync.RWMutex
	byID      map[string]*Client
	byAccount map[int64]map[string]*Client
	shutdown  bool
}

// NewHub 创建连接索引
func NewHub() *Hub {
	return &Hub{
		byID:      make(map[string]*Client),
		byAccount: make(map[int64]map[string]*Client),
	}
}

// Register 注册连接，Shutdown 之后返回 false
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		return false
	}

	h.byID[client.ID()] = client
	conns, ok := h.byAccount[client.AccountID()]
	if !ok {
		conns = make(map[string]*Client)
		h.byAccount[client.AccountID()] = conns
	}
	conns[client.ID()] = client
	metrics.WebsocketConnections.Inc()
	return true
}

// Unregister 注销连接，只删除与入参完全一致的那一条
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.byID[client.ID()]
	if !ok || current != client {
		return
	}

	delete(h.byID, client.ID())
	if conns, ok := h.byAccount[client.AccountID()]; ok {
		delete(conns, client.ID())
		if len(conns) == 0 {
			delete(h.byAccount, client.AccountID())
		}
	}
	metrics.WebsocketConnections.Dec()
}

// SendToAccount 向账号的全部在线连接投递，返回成功入队的连接数
func (h *Hub) SendToAccount(accountID int64, msg []byte) int {
	h.mu.RLock()
	conns := h.byAccount[accountID]
	clients := make([]*Client, 0, len(conns))
	for _, client := range conns {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Notify 把事件封装成帧推送给账号，账号不在线时直接丢弃
func (h *Hub) Notify(ctx context.Context, accountID int64, event string, payload any) {
	if !h.Online(accountID) {
		logger.Debug(ctx, "账号不在线，丢弃好友事件",
			logger.Int64("target_id", accountID),
			logger.String("event", event),
		)
		return
	}

	msg, err := MarshalEnvelope(event, payload)
	if err != nil {
		logger.Warn(ctx, "通知帧序列化失败",
			logger.String("event", event),
			logger.ErrorField("error", err),
		)
		return
	}

	sent := h.SendToAccount(accountID, msg)
	logger.Debug(ctx, "推送好友事件",
		logger.Int64("target_id", accountID),
		logger.String("event", event),
		logger.Int("sent", sent),
	)
}

// Online 账号当前是否有在线连接
func (h *Hub) Online(accountID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byAccount[accountID]) > 0
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byID)
}

// Shutdown 关闭全部连接并拒绝后续注册
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.shutdown {
		h.mu.Unlock()
		return
	}
	h.shutdown = true

	clients := make([]*Client, 0, len(h.byID))
	for _, client := range h.byID {
		clients = append(clients, client)
	}
	metrics.WebsocketConnections.Sub(float64(len(clients)))
	h.byID = make(map[string]*Client)
	h.byAccount = make(map[int64]map[string]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
