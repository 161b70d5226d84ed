package file_store

import (
	"bytes"
	"context"
	"io"

	"github.com/Malowking/uniask/core/errors"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RustFSConfig RustFS（S3兼容）存储配置
type RustFSConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RustFSStorage 基于S3兼容接口的对象存储实现
type RustFSStorage struct {
	client *minio.Client
	bucket string
}

// NewRustFSStorage 创建RustFS存储实例，bucket不存在时创建
func NewRustFSStorage(ctx context.Context, conf *RustFSConfig) (*RustFSStorage, error) {
	if conf == nil || conf.Endpoint == "" || conf.Bucket == "" {
		return nil, errors.New(errors.ErrConfigMissing,
			"rustfs configuration is incomplete. Required: endpoint, bucket")
	}

	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrInternalError, "failed to create MinIO client: %v", err)
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, errors.Newf(errors.ErrInternalError, "failed to check if bucket exists: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Newf(errors.ErrInternalError, "failed to create bucket: %v", err)
		}
		g.Log().Infof(ctx, "Created bucket '%s'", conf.Bucket)
	}

	return &RustFSStorage{client: client, bucket: conf.Bucket}, nil
}

// ReadFile 读取对象全部内容
func (r *RustFSStorage) ReadFile(ctx context.Context, name string) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to get object %s: %v", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to read object %s: %v", name, err)
	}
	return data, nil
}

// WriteFile 写入对象，已存在时覆盖
func (r *RustFSStorage) WriteFile(ctx context.Context, name string, data []byte) error {
	_, err := r.client.PutObject(ctx, r.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		g.Log().Errorf(ctx, "Failed to put object %s: %v", name, err)
		return errors.Newf(errors.ErrFileWriteFailed, "failed to put object %s: %v", name, err)
	}

	g.Log().Infof(ctx, "Object saved to bucket '%s': %s", r.bucket, name)
	return nil
}

// Exists 检查对象是否存在
func (r *RustFSStorage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Newf(errors.ErrFileReadFailed, "failed to stat object %s: %v", name, err)
}
