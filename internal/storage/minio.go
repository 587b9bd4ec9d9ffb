package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"skillfit-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO 对象存储适配器, 归档搜索工件的JSON副本
type MinIO struct {
	client *minio.Client
	config *config.MinIOConfig
}

// NewMinIO 创建MinIO客户端并确保归档桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO配置不完整")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{client: client, config: cfg}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.ensureBucketExists(ctx, cfg.BucketName); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureBucketExists 检查桶是否存在, 不存在则创建
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查桶 %s 失败: %w", bucketName, err)
	}
	if !exists {
		err = m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: m.config.Location})
		if err != nil {
			return fmt.Errorf("创建桶 %s 失败: %w", bucketName, err)
		}
	}
	return nil
}

// UploadArtifact 上传搜索工件JSON到归档桶
func (m *MinIO) UploadArtifact(ctx context.Context, objectName string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.config.BucketName, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("上传工件 %s 失败: %w", objectName, err)
	}
	return nil
}
