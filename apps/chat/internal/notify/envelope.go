package notify

import (
	"encoding/json"
	"errors"
	"strings"
)

// 帧类型
const (
	TypeHeartbeat    = "heartbeat"
	TypeHeartbeatAck = "heartbeat_ack"
	TypeError        = "error"
)

// ws 帧内错误码，不是 HTTP 状态码
const (
	FrameInvalidFormatCode = 10001
	FrameUnsupportedCode   = 10002
)

var errEmptyFrameType = errors.New("notify: frame type is empty")

// Envelope websocket 通用消息包，Data 由上层按 Type 解析
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData type=error 时的 data
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseEnvelope 解析上行帧
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	env.Type = strings.TrimSpace(env.Type)
	if env.Type == "" {
		return nil, errEmptyFrameType
	}
	return &env, nil
}

// MarshalEnvelope 构造下行帧，data 为 nil 时省略
func MarshalEnvelope(frameType string, data any) ([]byte, error) {
	env := Envelope{Type: frameType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
