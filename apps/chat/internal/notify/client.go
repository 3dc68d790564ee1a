package notify

import (
	"context"
	"sync"
	"time"

	"ChatRoom/pkg/util"

	"github.com/gorilla/websocket"
)

const (
	defaultSendQueueSize = 64
	wsWriteTimeout       = 5 * time.Second
	// 读超时窗口，每收到一帧（含心跳和 pong）顺延一次
	wsReadTimeout = 60 * time.Second
	// 上行只有心跳这类小帧
	wsMaxFrameSize = 4096
)

// Conn Client 依赖的连接能力，*websocket.Conn 满足该接口
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// MessageHandler 上行帧回调
type MessageHandler func(raw []byte)

// CloseHandler 读写循环退出后的清理回调
type CloseHandler func()

// Client 单条 websocket 连接
// send 队列把业务 goroutine 和网络写隔开；done 统一通知读写循环退出；Close 幂等。
type Client struct {
	id          string
	accountID   int64
	conn        Conn
	readTimeout time.Duration
	send        chan []byte
	done        chan struct{}
	once        sync.Once
}

// NewClient 创建连接，每条连接分配独立 id，同一账号可同时持有多条
func NewClient(conn Conn, accountID int64) *Client {
	conn.SetReadLimit(wsMaxFrameSize)
	c := &Client{
		id:          util.NewUUID(),
		accountID:   accountID,
		conn:        conn,
		readTimeout: wsReadTimeout,
		send:        make(chan []byte, defaultSendQueueSize),
		done:        make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		return c.extendReadDeadline()
	})
	return c
}

// extendReadDeadline 顺延读超时，客户端长时间无任何上行帧时 ReadMessage 返回错误并断开
func (c *Client) extendReadDeadline() error {
	return c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) AccountID() int64 {
	return c.accountID
}

// Done 连接关闭信号
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Enqueue 投递下行消息
// 返回 false 表示连接已关闭或队列已满。
func (c *Client) Enqueue(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	cloned := append([]byte(nil), msg...)
	select {
	case <-c.done:
		return false
	case c.send <- cloned:
		return true
	default:
		return false
	}
}

// Run 启动写循环并在当前 goroutine 读，读循环结束后执行 Close 和 onClose
func (c *Client) Run(ctx context.Context, onMessage MessageHandler, onClose CloseHandler) {
	defer func() {
		c.Close()
		if onClose != nil {
			onClose()
		}
	}()

	go c.writeLoop(ctx)
	c.readLoop(ctx, onMessage)
}

// Close 先发关闭信号，再关闭底层连接
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readLoop(ctx context.Context, onMessage MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if err := c.extendReadDeadline(); err != nil {
			return
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if onMessage != nil {
			onMessage(raw)
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}
