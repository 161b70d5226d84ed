package vector_store

import (
	"context"

	"github.com/Malowking/uniask/core/config"
	"github.com/Malowking/uniask/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// New 按配置创建向量存储实例
// vectorStore.type 支持 milvus 和 pgvector，集合名与向量维度全局统一
func New(ctx context.Context) (VectorStore, error) {
	storeType := g.Cfg().MustGet(ctx, "vectorStore.type", StoreTypeMilvus).String()
	collection := config.CollectionName(ctx)
	dimension := config.LoadEmbedderConfig(ctx).Dimension

	switch storeType {
	case StoreTypeMilvus:
		return NewMilvusStore(ctx, &MilvusConfig{
			Address:    g.Cfg().MustGet(ctx, "milvus.address", "").String(),
			Database:   g.Cfg().MustGet(ctx, "milvus.database", "default").String(),
			Collection: collection,
			Dimension:  dimension,
		})
	case StoreTypePgvector:
		return NewPostgresStore(ctx, &PostgresConfig{
			Host:       g.Cfg().MustGet(ctx, "postgres.host", "").String(),
			Port:       g.Cfg().MustGet(ctx, "postgres.port", "5432").String(),
			User:       g.Cfg().MustGet(ctx, "postgres.user", "").String(),
			Password:   g.Cfg().MustGet(ctx, "postgres.password", "").String(),
			Database:   g.Cfg().MustGet(ctx, "postgres.database", "").String(),
			SSLMode:    g.Cfg().MustGet(ctx, "postgres.sslmode", "disable").String(),
			Collection: collection,
			Dimension:  dimension,
		})
	default:
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"unsupported vectorStore.type: %s. Supported types: milvus, pgvector", storeType)
	}
}
