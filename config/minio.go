package config

import "time"

// MinIOConfig 头像对象存储配置
type MinIOConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`                         // 关闭时头像上传接口返回服务不可用
	Endpoint        string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`                      // MinIO 服务地址，如: localhost:9000
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId" mapstructure:"accessKeyId"`             // Access Key
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey" mapstructure:"secretAccessKey"` // Secret Key
	UseSSL          bool   `json:"useSSL" yaml:"useSSL" mapstructure:"useSSL"`

	BucketName string `json:"bucketName" yaml:"bucketName" mapstructure:"bucketName"`
	Location   string `json:"location" yaml:"location" mapstructure:"location"`

	AvatarPrefix  string        `json:"avatarPrefix" yaml:"avatarPrefix" mapstructure:"avatarPrefix"`    // 头像对象前缀
	MaxFileSize   int64         `json:"maxFileSize" yaml:"maxFileSize" mapstructure:"maxFileSize"`       // 最大文件大小（字节）
	AllowedTypes  []string      `json:"allowedTypes" yaml:"allowedTypes" mapstructure:"allowedTypes"`    // 允许的 Content-Type
	UploadTimeout time.Duration `json:"uploadTimeout" yaml:"uploadTimeout" mapstructure:"uploadTimeout"` // 上传超时时间

	PublicRead bool   `json:"publicRead" yaml:"publicRead" mapstructure:"publicRead"` // 新建 bucket 时是否设置公开读
	BaseURL    string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`          // 返回给客户端的访问地址前缀
}

// DefaultMinIOConfig 返回本地开发的默认配置
func DefaultMinIOConfig() MinIOConfig {
	return MinIOConfig{
		Enabled:         true,
		Endpoint:        "minio:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "chat-room",
		Location:        "us-east-1",
		AvatarPrefix:    "avatars/",
		MaxFileSize:     2 * 1024 * 1024, // 2MB
		AllowedTypes:    []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		UploadTimeout:   30 * time.Second,
		PublicRead:      true,
		BaseURL:         "http://localhost:9000",
	}
}
