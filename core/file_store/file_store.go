package file_store

import (
	"context"

	"github.com/Malowking/uniask/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// 文件存储类型
const (
	StorageTypeLocal  = "local"
	StorageTypeRustFS = "rustfs"
)

// Storage 语料文件存储抽象
// 知识库构建从这里读取采集脚本产出的JSON语料
type Storage interface {
	// ReadFile 读取文件全部内容
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// WriteFile 写入文件，已存在时覆盖
	WriteFile(ctx context.Context, name string, data []byte) error
	// Exists 检查文件是否存在
	Exists(ctx context.Context, name string) (bool, error)
}

// New 按配置创建文件存储实例
func New(ctx context.Context) (Storage, error) {
	storageType := g.Cfg().MustGet(ctx, "fileStore.type", StorageTypeLocal).String()

	switch storageType {
	case StorageTypeLocal:
		return NewLocalStorage(g.Cfg().MustGet(ctx, "fileStore.local.dir", "data").String())
	case StorageTypeRustFS:
		return NewRustFSStorage(ctx, &RustFSConfig{
			Endpoint:  g.Cfg().MustGet(ctx, "fileStore.rustfs.endpoint", "").String(),
			AccessKey: g.Cfg().MustGet(ctx, "fileStore.rustfs.accessKey", "").String(),
			SecretKey: g.Cfg().MustGet(ctx, "fileStore.rustfs.secretKey", "").String(),
			Bucket:    g.Cfg().MustGet(ctx, "fileStore.rustfs.bucket", "").String(),
			UseSSL:    g.Cfg().MustGet(ctx, "fileStore.rustfs.ssl", false).Bool(),
		})
	default:
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"unsupported fileStore.type: %s. Supported types: local, rustfs", storageType)
	}
}
