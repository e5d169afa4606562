package data

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// ErrPathExists 目标路径已有对象，上传方必须换路径而不是覆盖
var ErrPathExists = fmt.Errorf("storage path already exists")

// ObjectStore 对象存储抽象，方便测试替换
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
}

// MinioStore 基于 MinIO 的 ObjectStore 实现
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(d *Data) *MinioStore {
	return &MinioStore{client: d.Minio, bucket: d.Bucket}
}

// Upload 上传对象，路径已存在时直接失败 (fail closed，绝不覆盖)
func (s *MinioStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	// 先探测路径占用
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%w: %s", ErrPathExists, path)
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return fmt.Errorf("stat object: %v", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio upload: %v", err)
	}
	return nil
}

// Download 整块读回对象
func (s *MinioStore) Download(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("minio read: %v", err)
	}
	return data, nil
}
