package vector_store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Malowking/uniask/core/common"
	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresConfig PostgreSQL连接与表配置
type PostgresConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
	SSLMode    string
	Collection string
	Dimension  int
}

// PostgresStore 基于pgvector扩展的向量数据库实现
// 每个集合对应 vectors schema 下的一张表
type PostgresStore struct {
	pool      *pgxpool.Pool
	schema    string
	table     string
	dimension int
}

// NewPostgresStore 创建PostgreSQL向量存储实例并建立连接池
func NewPostgresStore(ctx context.Context, conf *PostgresConfig) (*PostgresStore, error) {
	if conf == nil || conf.Host == "" || conf.User == "" || conf.Database == "" {
		return nil, errors.New(errors.ErrConfigMissing,
			"postgres configuration is incomplete. Required: host, user, database")
	}
	if !common.ValidateCollectionName(conf.Collection) {
		return nil, errors.Newf(errors.ErrConfigInvalid, "invalid collection name: %s", conf.Collection)
	}
	if conf.Dimension <= 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "dimension must be positive, got %d", conf.Dimension)
	}

	port := conf.Port
	if port == "" {
		port = "5432"
	}
	sslMode := conf.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	var connStr string
	if conf.Password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			conf.Host, port, conf.User, conf.Password, conf.Database, sslMode)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
			conf.Host, port, conf.User, conf.Database, sslMode)
	}

	g.Log().Infof(ctx, "Connecting to PostgreSQL at: %s:%s, database: %s", conf.Host, port, conf.Database)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to create postgres connection pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to ping postgres: %v", err)
	}

	return &PostgresStore{
		pool:      pool,
		schema:    "vectors",
		table:     conf.Collection,
		dimension: conf.Dimension,
	}, nil
}

func (p *PostgresStore) fullTableName() string {
	return fmt.Sprintf("%s.%s", p.schema, p.table)
}

// EnsureReady 确保pgvector扩展、schema、表和HNSW索引就绪，幂等
func (p *PostgresStore) EnsureReady(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return errors.Newf(errors.ErrVectorStoreInit,
			"failed to create pgvector extension: %v. Please ensure pgvector is installed for your PostgreSQL version", err)
	}

	if _, err := p.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", p.schema)); err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to create vectors schema: %v", err)
	}

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			text TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			vector vector(%d) NOT NULL
		)
	`, p.fullTableName(), p.dimension)
	if _, err := p.pool.Exec(ctx, createTableSQL); err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to create table %s: %v", p.fullTableName(), err)
	}

	createIndexSQL := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_vector ON %s USING hnsw (vector vector_l2_ops)",
		p.table, p.fullTableName())
	if _, err := p.pool.Exec(ctx, createIndexSQL); err != nil {
		return errors.Newf(errors.ErrVectorStoreInit, "failed to create index on table %s: %v", p.fullTableName(), err)
	}

	g.Log().Infof(ctx, "Table '%s' ready with dimension %d", p.fullTableName(), p.dimension)
	return nil
}

// Upsert 写入向量记录，同ID覆盖旧记录
func (p *PostgresStore) Upsert(ctx context.Context, vectors []*schema.IndexedVector) ([]string, error) {
	if len(vectors) == 0 {
		return []string{}, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorInsert, "failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	upsertSQL := fmt.Sprintf(`
		INSERT INTO %s (id, text, metadata, vector)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET text = EXCLUDED.text, metadata = EXCLUDED.metadata, vector = EXCLUDED.vector
	`, p.fullTableName())

	ids := make([]string, len(vectors))
	for idx, vec := range vectors {
		if len(vec.Embedding) != p.dimension {
			return nil, errors.Newf(errors.ErrVectorInsert,
				"vector %d has dimension %d, table expects %d", idx, len(vec.Embedding), p.dimension)
		}

		if vec.ID == "" {
			vec.ID = uuid.New().String()
		}
		ids[idx] = vec.ID

		metaBytes, err := marshalMetadata(vec.Metadata)
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorInsert, "failed to marshal metadata: %v", err)
		}

		_, err = tx.Exec(ctx, upsertSQL,
			vec.ID, truncateString(vec.Text, maxTextLength), metaBytes, pgvector.NewVector(vec.Embedding))
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorInsert, "failed to upsert vector %s: %v", vec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Newf(errors.ErrVectorInsert, "failed to commit transaction: %v", err)
	}

	g.Log().Infof(ctx, "Successfully upserted %d vectors into table '%s'", len(vectors), p.fullTableName())
	return ids, nil
}

// Search 按L2距离做近邻检索，过滤条件编译为 jsonb 精确匹配
func (p *PostgresStore) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]*schema.SearchResult, error) {
	if len(embedding) != p.dimension {
		return nil, errors.Newf(errors.ErrVectorSearch,
			"query vector has dimension %d, table expects %d", len(embedding), p.dimension)
	}
	if topK <= 0 {
		return nil, errors.Newf(errors.ErrInvalidParameter, "topK must be positive, got %d", topK)
	}

	args := []any{pgvector.NewVector(embedding)}
	var conditions []string

	// 过滤键排序保证生成SQL稳定
	keys := make([]string, 0, len(filters))
	for key := range filters {
		if !common.ValidateFilterKey(key) {
			return nil, errors.Newf(errors.ErrInvalidParameter, "invalid filter key: %s", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, key, filters[key])
		conditions = append(conditions, fmt.Sprintf("metadata->>$%d = $%d", len(args)-1, len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, topK)

	searchSQL := fmt.Sprintf(`
		SELECT id, text, metadata, vector <-> $1 AS distance
		FROM %s
		%s
		ORDER BY distance
		LIMIT $%d
	`, p.fullTableName(), whereClause, len(args))

	rows, err := p.pool.Query(ctx, searchSQL, args...)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorSearch, "failed to execute vector search: %v", err)
	}
	defer rows.Close()

	results := make([]*schema.SearchResult, 0, topK)
	for rows.Next() {
		var id, text string
		var metadataBytes []byte
		var distance float64

		if err := rows.Scan(&id, &text, &metadataBytes, &distance); err != nil {
			return nil, errors.Newf(errors.ErrVectorSearch, "failed to scan row: %v", err)
		}

		metadata := make(map[string]string)
		if len(metadataBytes) > 0 {
			if err := sonic.Unmarshal(metadataBytes, &metadata); err != nil {
				g.Log().Warningf(ctx, "failed to parse metadata for record %s: %v", id, err)
			}
		}

		results = append(results, &schema.SearchResult{
			ID:       id,
			Text:     text,
			Metadata: metadata,
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Newf(errors.ErrVectorSearch, "error iterating over rows: %v", err)
	}

	return results, nil
}

// DeleteAll 清空集合：删表后立即重建空表
func (p *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", p.fullTableName())); err != nil {
		return errors.Newf(errors.ErrVectorDelete, "failed to drop table %s: %v", p.fullTableName(), err)
	}
	g.Log().Infof(ctx, "Table '%s' dropped", p.fullTableName())
	return p.EnsureReady(ctx)
}

// Stats 返回表行数与向量维度
func (p *PostgresStore) Stats(ctx context.Context) (*schema.IndexStats, error) {
	var count int64
	err := p.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", p.fullTableName())).Scan(&count)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorStats, "failed to count rows in %s: %v", p.fullTableName(), err)
	}
	return &schema.IndexStats{Count: count, Dimension: p.dimension}, nil
}

// Close 关闭连接池
func (p *PostgresStore) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}
