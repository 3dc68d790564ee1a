package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ChatRoom/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var notifyTestOnce sync.Once

func initNotifyTest() {
	notifyTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeConn struct {
	inbound  chan []byte
	outbound chan []byte
	closed   chan struct{}
	once     sync.Once

	mu           sync.Mutex
	readDeadline time.Time
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan []byte, 8),
		outbound: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	deadline := f.readDeadline
	f.mu.Unlock()

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case raw := <-f.inbound:
		return 1, raw, nil
	case <-f.closed:
		return 0, nil, errors.New("closed")
	case <-timeout:
		return 0, nil, errors.New("i/o timeout")
	}
}

func (f *fakeConn) SetReadDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readDeadline = t
	return nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("closed")
	case f.outbound <- data:
		return nil
	}
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64)               {}
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func readFrame(t *testing.T, conn *fakeConn) Envelope {
	t.Helper()
	select {
	case raw := <-conn.outbound:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame written")
		return Envelope{}
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("parse_trims_type", func(t *testing.T) {
		env, err := ParseEnvelope([]byte(`{"type":" heartbeat "}`))
		require.NoError(t, err)
		assert.Equal(t, TypeHeartbeat, env.Type)
	})

	t.Run("parse_rejects_empty_type", func(t *testing.T) {
		_, err := ParseEnvelope([]byte(`{"data":{}}`))
		require.Error(t, err)
	})

	t.Run("parse_rejects_garbage", func(t *testing.T) {
		_, err := ParseEnvelope([]byte(`not json`))
		require.Error(t, err)
	})

	t.Run("marshal_omits_nil_data", func(t *testing.T) {
		raw, err := MarshalEnvelope(TypeHeartbeatAck, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"heartbeat_ack"}`, string(raw))
	})
}

func TestHub_RegisterAndSend(t *testing.T) {
	initNotifyTest()

	hub := NewHub()
	connA1, connA2, connB := newFakeConn(), newFakeConn(), newFakeConn()
	a1, a2, b := NewClient(connA1, 1), NewClient(connA2, 1), NewClient(connB, 2)

	require.True(t, hub.Register(a1))
	require.True(t, hub.Register(a2))
	require.True(t, hub.Register(b))
	assert.Equal(t, 3, hub.Count())
	assert.True(t, hub.Online(1))
	assert.NotEqual(t, a1.ID(), a2.ID())

	// 同一账号的多条连接都能收到
	assert.Equal(t, 2, hub.SendToAccount(1, []byte("x")))
	assert.Equal(t, 0, hub.SendToAccount(3, []byte("x")))

	hub.Unregister(a1)
	assert.Equal(t, 2, hub.Count())
	assert.True(t, hub.Online(1))

	hub.Unregister(a2)
	assert.False(t, hub.Online(1))

	// 重复注销不影响其他连接
	hub.Unregister(a2)
	assert.Equal(t, 1, hub.Count())
}

func TestHub_NotifyDeliversEnvelope(t *testing.T) {
	initNotifyTest()

	hub := NewHub()
	conn := newFakeConn()
	client := NewClient(conn, 9)
	require.True(t, hub.Register(client))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx, nil, func() { hub.Unregister(client) })

	hub.Notify(ctx, 9, "friend_request", map[string]any{"fromUserId": 3})

	env := readFrame(t, conn)
	assert.Equal(t, "friend_request", env.Type)
	assert.JSONEq(t, `{"fromUserId":3}`, string(env.Data))
}

func TestHub_Shutdown(t *testing.T) {
	initNotifyTest()

	hub := NewHub()
	conn := newFakeConn()
	client := NewClient(conn, 5)
	require.True(t, hub.Register(client))

	hub.Shutdown()

	assert.Equal(t, 0, hub.Count())
	select {
	case <-client.Done():
	default:
		t.Fatal("client should be closed")
	}
	assert.False(t, hub.Register(NewClient(newFakeConn(), 6)))
	assert.False(t, client.Enqueue([]byte("late")))
}

func TestClient_RunInvokesHandlers(t *testing.T) {
	initNotifyTest()

	conn := newFakeConn()
	client := NewClient(conn, 1)

	received := make(chan []byte, 1)
	closed := make(chan struct{})
	go client.Run(context.Background(), func(raw []byte) {
		received <- raw
	}, func() { close(closed) })

	conn.inbound <- []byte(`{"type":"heartbeat"}`)
	select {
	case raw := <-received:
		assert.JSONEq(t, `{"type":"heartbeat"}`, string(raw))
	case <-time.After(time.Second):
		t.Fatal("message handler not called")
	}

	_ = conn.Close()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close handler not called")
	}
}

func TestClient_ReadTimeout(t *testing.T) {
	initNotifyTest()

	t.Run("idle_connection_is_closed", func(t *testing.T) {
		conn := newFakeConn()
		client := NewClient(conn, 1)
		client.readTimeout = 50 * time.Millisecond

		closed := make(chan struct{})
		go client.Run(context.Background(), nil, func() { close(closed) })

		select {
		case <-closed:
		case <-time.After(time.Second):
			t.Fatal("idle client should be closed after read timeout")
		}
		select {
		case <-conn.closed:
		default:
			t.Fatal("underlying conn should be closed")
		}
	})

	t.Run("heartbeats_extend_deadline", func(t *testing.T) {
		conn := newFakeConn()
		client := NewClient(conn, 1)
		client.readTimeout = 100 * time.Millisecond

		closed := make(chan struct{})
		go client.Run(context.Background(), nil, func() { close(closed) })

		// 心跳间隔小于超时窗口，总时长超过窗口
		for i := 0; i < 6; i++ {
			time.Sleep(40 * time.Millisecond)
			conn.inbound <- []byte(`{"type":"heartbeat"}`)
		}
		select {
		case <-closed:
			t.Fatal("client with regular heartbeats should stay open")
		default:
		}

		select {
		case <-closed:
		case <-time.After(time.Second):
			t.Fatal("client should be closed once heartbeats stop")
		}
	})
}
