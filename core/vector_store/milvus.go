package vector_store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Malowking/uniask/core/common"
	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

const (
	fieldID       = "id"
	fieldText     = "text"
	fieldVector   = "vector"
	fieldMetadata = "metadata"

	maxTextLength = 65535
)

// MilvusConfig Milvus连接与集合配置
type MilvusConfig struct {
	Address    string
	Database   string
	Collection string
	Dimension  int
}

// MilvusStore Milvus向量数据库实现
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dimension  int
}

// NewMilvusStore 创建Milvus向量存储实例并建立连接
func NewMilvusStore(ctx context.Context, conf *MilvusConfig) (*MilvusStore, error) {
	if conf == nil || conf.Address == "" {
		return nil, errors.New(errors.ErrConfigMissing, "milvus.address is required")
	}
	if !common.ValidateCollectionName(conf.Collection) {
		return nil, errors.Newf(errors.ErrConfigInvalid, "invalid collection name: %s", conf.Collection)
	}
	if conf.Dimension <= 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "dimension must be positive, got %d", conf.Dimension)
	}

	database := conf.Database
	if database == "" {
		database = "default"
	}

	g.Log().Infof(ctx, "Connecting to Milvus at: %s, database: %s", conf.Address, database)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: conf.Address,
		DBName:  database,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorStoreInit,
			"failed to create milvus client (address: %s, database: %s): %v", conf.Address, database, err)
	}

	return &MilvusStore{
		client:     client,
		collection: conf.Collection,
		dimension:  conf.Dimension,
	}, nil
}

// collectionFields 标准集合字段定义
func (m *MilvusStore) collectionFields() []*entity.Field {
	return []*entity.Field{
		{
			Name:        fieldID,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			PrimaryKey:  true,
			AutoID:      false,
			Description: "Chunk unique ID (primary key)",
		},
		{
			Name:        fieldText,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "65535"},
			Description: "Document chunk content",
		},
		{
			Name:        fieldVector,
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": strconv.Itoa(m.dimension)},
			Description: "Document chunk embedding vector",
		},
		{
			Name:        fieldMetadata,
			DataType:    entity.FieldTypeJSON,
			Description: "Additional metadata (JSON)",
		},
	}
}

// EnsureReady 确保集合存在、索引建立且已加载
func (m *MilvusStore) EnsureReady(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(m.collection))
	if err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to check if collection exists: %v", err)
	}
	if has {
		return nil
	}

	collSchema := &entity.Schema{
		CollectionName: m.collection,
		Description:    "存储文档分片及其向量",
		AutoID:         false,
		Fields:         m.collectionFields(),
	}

	err = m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(m.collection, collSchema).WithIndexOptions(
		milvusclient.NewCreateIndexOption(m.collection, fieldVector, index.NewHNSWIndex(entity.L2, 64, 128))))
	if err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to create collection '%s': %v", m.collection, err)
	}

	_, err = m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(m.collection))
	if err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to load collection '%s': %v", m.collection, err)
	}

	g.Log().Infof(ctx, "Collection '%s' created with dimension %d, index built and loaded", m.collection, m.dimension)
	return nil
}

// Upsert 写入向量记录，相同ID的已有记录被覆盖
func (m *MilvusStore) Upsert(ctx context.Context, vectors []*schema.IndexedVector) ([]string, error) {
	if len(vectors) == 0 {
		return []string{}, nil
	}

	ids := make([]string, len(vectors))
	texts := make([]string, len(vectors))
	embeddings := make([][]float32, len(vectors))
	metadataList := make([][]byte, len(vectors))

	for idx, vec := range vectors {
		if len(vec.Embedding) != m.dimension {
			return nil, errors.Newf(errors.ErrVectorInsert,
				"vector %d has dimension %d, collection expects %d", idx, len(vec.Embedding), m.dimension)
		}

		if vec.ID == "" {
			vec.ID = uuid.New().String()
		}
		ids[idx] = vec.ID
		texts[idx] = truncateString(vec.Text, maxTextLength)
		embeddings[idx] = vec.Embedding

		metaBytes, err := marshalMetadata(vec.Metadata)
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorInsert, "failed to marshal metadata: %v", err)
		}
		metadataList[idx] = metaBytes
	}

	columns := []column.Column{
		column.NewColumnVarChar(fieldID, ids),
		column.NewColumnVarChar(fieldText, texts),
		column.NewColumnFloatVector(fieldVector, m.dimension, embeddings),
		column.NewColumnJSONBytes(fieldMetadata, metadataList),
	}

	result, err := m.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(m.collection, columns...))
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorInsert, "failed to upsert vectors: %v", err)
	}

	g.Log().Infof(ctx, "Successfully upserted %d vectors into collection '%s'", result.UpsertCount, m.collection)
	return ids, nil
}

// buildFilterExpr 把元数据过滤条件编译成Milvus过滤表达式
// 非法键直接拒绝，值做转义防止表达式注入
func buildFilterExpr(filters map[string]string) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(filters))
	for key, value := range filters {
		if !common.ValidateFilterKey(key) {
			return "", errors.Newf(errors.ErrInvalidParameter, "invalid filter key: %s", key)
		}
		terms = append(terms, fmt.Sprintf(`metadata["%s"] == "%s"`, key, common.SanitizeFilterValue(value)))
	}
	return strings.Join(terms, " and "), nil
}

// Search 按L2距离做近邻检索
func (m *MilvusStore) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]*schema.SearchResult, error) {
	if len(embedding) != m.dimension {
		return nil, errors.Newf(errors.ErrVectorSearch,
			"query vector has dimension %d, collection expects %d", len(embedding), m.dimension)
	}
	if topK <= 0 {
		return nil, errors.Newf(errors.ErrInvalidParameter, "topK must be positive, got %d", topK)
	}

	filterExpr, err := buildFilterExpr(filters)
	if err != nil {
		return nil, err
	}

	searchOpt := milvusclient.NewSearchOption(m.collection, topK, []entity.Vector{entity.FloatVector(embedding)}).
		WithANNSField(fieldVector).
		WithOutputFields(fieldID, fieldText, fieldMetadata).
		WithConsistencyLevel(entity.ClBounded)
	if filterExpr != "" {
		searchOpt = searchOpt.WithFilter(filterExpr)
	}

	results, err := m.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorSearch, "search has error: %v", err)
	}
	if len(results) == 0 {
		return []*schema.SearchResult{}, nil
	}

	return convertResultSet(results[0].Fields, results[0].Scores)
}

// convertResultSet 把Milvus结果列转换成检索结果
// HNSW按L2度量建索引，Scores即为原始距离
func convertResultSet(columns []column.Column, scores []float32) ([]*schema.SearchResult, error) {
	if len(columns) == 0 {
		return []*schema.SearchResult{}, nil
	}

	numDocs := columns[0].Len()
	result := make([]*schema.SearchResult, numDocs)
	for i := range result {
		result[i] = &schema.SearchResult{Metadata: make(map[string]string)}
	}
	for i := 0; i < numDocs && i < len(scores); i++ {
		result[i].Distance = float64(scores[i])
	}

	for _, col := range columns {
		switch col.Name() {
		case fieldID:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, errors.Newf(errors.ErrVectorSearch, "failed to get id: %v", err)
				}
				if str, ok := val.(string); ok {
					result[i].ID = str
				}
			}
		case fieldText:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, errors.Newf(errors.ErrVectorSearch, "failed to get text: %v", err)
				}
				if str, ok := val.(string); ok {
					result[i].Text = str
				}
			}
		case fieldMetadata:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil || val == nil {
					continue
				}
				var raw []byte
				switch v := val.(type) {
				case string:
					raw = []byte(v)
				case []byte:
					raw = v
				default:
					continue
				}
				var metadata map[string]string
				if err := sonic.Unmarshal(raw, &metadata); err == nil {
					result[i].Metadata = metadata
				}
			}
		}
	}

	return result, nil
}

// DeleteAll 清空集合：删除后立即重建空集合
func (m *MilvusStore) DeleteAll(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(m.collection))
	if err != nil {
		return errors.Newf(errors.ErrVectorDelete, "failed to check if collection exists: %v", err)
	}
	if has {
		if err := m.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(m.collection)); err != nil {
			return errors.Newf(errors.ErrVectorDelete, "failed to drop collection '%s': %v", m.collection, err)
		}
		g.Log().Infof(ctx, "Collection '%s' dropped", m.collection)
	}
	return m.EnsureReady(ctx)
}

// Stats 返回集合行数与向量维度
func (m *MilvusStore) Stats(ctx context.Context) (*schema.IndexStats, error) {
	stats, err := m.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(m.collection))
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorStats, "failed to get collection stats: %v", err)
	}

	var count int64
	if rowCount, ok := stats["row_count"]; ok {
		count, err = strconv.ParseInt(rowCount, 10, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorStats, "invalid row_count value: %s", rowCount)
		}
	}

	return &schema.IndexStats{Count: count, Dimension: m.dimension}, nil
}

// Close 关闭Milvus连接
func (m *MilvusStore) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}

// Helper functions

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	return sonic.Marshal(metadata)
}
