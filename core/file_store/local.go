package file_store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Malowking/uniask/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// LocalStorage 本地文件系统存储，所有文件名相对于根目录解析
type LocalStorage struct {
	root string
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.New(errors.ErrConfigMissing, "fileStore.local.dir is required")
	}
	return &LocalStorage{root: root}, nil
}

func (l *LocalStorage) path(name string) string {
	return filepath.Join(l.root, filepath.Clean(name))
}

// ReadFile 读取文件全部内容
func (l *LocalStorage) ReadFile(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(l.path(name))
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to read file %s: %v", l.path(name), err)
	}
	return data, nil
}

// WriteFile 写入文件，父目录不存在时创建
func (l *LocalStorage) WriteFile(ctx context.Context, name string, data []byte) error {
	fullPath := l.path(name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		g.Log().Errorf(ctx, "Failed to create directory for %s: %v", fullPath, err)
		return errors.Newf(errors.ErrFileWriteFailed, "failed to create directory for %s: %v", fullPath, err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		g.Log().Errorf(ctx, "Failed to write file %s: %v", fullPath, err)
		return errors.Newf(errors.ErrFileWriteFailed, "failed to write file %s: %v", fullPath, err)
	}

	g.Log().Infof(ctx, "File saved to local storage: %s", fullPath)
	return nil
}

// Exists 检查文件是否存在
func (l *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(l.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Newf(errors.ErrFileReadFailed, "failed to stat file %s: %v", l.path(name), err)
}
