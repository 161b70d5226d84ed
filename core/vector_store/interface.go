package vector_store

import (
	"context"

	"github.com/Malowking/uniask/pkg/schema"
)

// 向量库类型
const (
	StoreTypeMilvus   = "milvus"
	StoreTypePgvector = "pgvector"
)

// VectorStore 向量数据库抽象
// 统一按L2距离检索，Search 返回结果按距离升序排列
type VectorStore interface {
	// EnsureReady 确保集合存在且索引就绪，不存在则创建，幂等
	EnsureReady(ctx context.Context) error

	// Upsert 写入向量记录，ID为空时生成UUID，返回实际写入的ID列表
	// 记录与返回ID按输入顺序一一对应
	Upsert(ctx context.Context, vectors []*schema.IndexedVector) ([]string, error)

	// Search 按向量做近邻检索
	// filters 为元数据精确匹配条件（字符串相等），多个条件取AND
	Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]*schema.SearchResult, error)

	// DeleteAll 清空集合中的全部记录并重建空集合
	DeleteAll(ctx context.Context) error

	// Stats 返回集合统计信息
	Stats(ctx context.Context) (*schema.IndexStats, error)

	// Close 释放底层连接
	Close(ctx context.Context) error
}
