package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ChatRoom/config"
	"ChatRoom/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("minio: file too large")
	// ErrTypeNotAllowed 文件类型不在允许列表中
	ErrTypeNotAllowed = errors.New("minio: content type not allowed")
)

// Storage MinIO 对象存储封装，当前只承载用户头像
type Storage struct {
	client *minio.Client
	config config.MinIOConfig
}

// UploadResult 上传结果
type UploadResult struct {
	ObjectName  string // 完整对象名，如 avatars/42/uuid.png
	URL         string // 对外访问地址
	Size        int64
	ContentType string
}

// Build 基于配置创建客户端，并确保 bucket 存在
func Build(cfg config.MinIOConfig) (*Storage, error) {
	// 1. 校验必填配置
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	// 2. 创建客户端
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// 3. 确保 bucket 存在
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info(ctx, "MinIO Bucket 创建成功", logger.String("bucket", cfg.BucketName))

		// 头像需要匿名可读
		if cfg.PublicRead {
			if err := client.SetBucketPolicy(ctx, cfg.BucketName, publicReadPolicy(cfg.BucketName)); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField("error", err),
				)
			}
		}
	}

	return &Storage{client: client, config: cfg}, nil
}

// UploadAvatar 上传头像，对象名为 {prefix}{accountID}/{uuid}{ext}
// Content-Type 以文件头 512 字节的嗅探结果为准，客户端声明的类型不可信。
func (s *Storage) UploadAvatar(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*UploadResult, error) {
	// 1. 大小校验
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, size, s.config.MaxFileSize)
	}

	// 2. 嗅探真实类型
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !s.isAllowedType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)
	}

	// 3. 生成对象名
	objectName := s.avatarObjectName(accountID, fileName)

	uploadCtx := ctx
	if s.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, s.config.UploadTimeout)
		defer cancel()
	}

	// 4. 已读取的文件头与剩余内容重新拼接后上传
	info, err := s.client.PutObject(uploadCtx, s.config.BucketName, objectName,
		io.MultiReader(bytes.NewReader(head), reader), size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", objectName),
			logger.Int64("size", size),
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("上传失败: %w", err)
	}

	return &UploadResult{
		ObjectName:  objectName,
		URL:         s.objectURL(objectName),
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}

// Delete 删除对象
func (s *Storage) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除失败: %w", err)
	}
	return nil
}

// ObjectNameFromURL 从对外地址反推对象名，不属于本 bucket 的地址返回空串
func (s *Storage) ObjectNameFromURL(url string) string {
	prefix := strings.TrimSuffix(s.config.BaseURL, "/") + "/" + s.config.BucketName + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func (s *Storage) avatarObjectName(accountID int64, fileName string) string {
	prefix := strings.TrimSuffix(s.config.AvatarPrefix, "/")
	ext := strings.ToLower(filepath.Ext(fileName))
	name := fmt.Sprintf("%d/%s%s", accountID, uuid.New().String(), ext)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (s *Storage) objectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(s.config.BaseURL, "/"),
		s.config.BucketName,
		strings.TrimPrefix(objectName, "/"),
	)
}

func (s *Storage) isAllowedType(contentType string) bool {
	if len(s.config.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`, bucket)
}
