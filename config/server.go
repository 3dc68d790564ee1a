package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host            string        `json:"host" yaml:"host" mapstructure:"host"`                                 // 监听地址
	Port            int           `json:"port" yaml:"port" mapstructure:"port"`                                 // 监听端口
	Mode            string        `json:"mode" yaml:"mode" mapstructure:"mode"`                                 // gin 模式: debug/release/test
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`             // 读取超时
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`          // 写入超时
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout"`    // 单请求处理超时
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"` // 优雅停机等待时间
	NodeID          int64         `json:"nodeId" yaml:"nodeId" mapstructure:"nodeId"`                           // 雪花算法节点号
}

// DefaultServerConfig 返回本地开发的默认配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		Mode:            "release",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		NodeID:          1,
	}
}
