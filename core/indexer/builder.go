package indexer

import (
	"context"

	"github.com/Malowking/uniask/core/chunker"
	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/core/vector_store"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// DefaultBatchSize 嵌入与写入的默认批大小
const DefaultBatchSize = 100

// Embedder 批量向量生成接口
type Embedder interface {
	EmbedStrings(ctx context.Context, texts []string) ([][]float32, error)
}

// BuildStats 一次构建的统计结果
type BuildStats struct {
	WebDocs       int   `json:"web_docs"`
	FacultyDocs   int   `json:"faculty_docs"`
	HandbookPages int   `json:"handbook_pages"`
	TotalChunks   int   `json:"total_chunks"`
	Indexed       int   `json:"indexed"`
	IndexCount    int64 `json:"index_count"`
}

// Builder 知识库构建器：加载语料、分片、嵌入并写入向量库
type Builder struct {
	loader    *Loader
	chunker   *chunker.Chunker
	embedder  Embedder
	store     vector_store.VectorStore
	faculties []string
	batchSize int
}

// NewBuilder 创建知识库构建器
func NewBuilder(loader *Loader, chk *chunker.Chunker, embedder Embedder, store vector_store.VectorStore, faculties []string, batchSize int) (*Builder, error) {
	if loader == nil || chk == nil || embedder == nil || store == nil {
		return nil, errors.New(errors.ErrConfigMissing,
			"loader, chunker, embedder and vector store are all required")
	}
	if len(faculties) == 0 {
		faculties = []string{"FTS"}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{
		loader:    loader,
		chunker:   chk,
		embedder:  embedder,
		store:     store,
		faculties: faculties,
		batchSize: batchSize,
	}, nil
}

// Build 全量构建知识库，已有数据保留（同ID覆盖）
func (b *Builder) Build(ctx context.Context) (*BuildStats, error) {
	g.Log().Info(ctx, "Building knowledge base...")

	stats := &BuildStats{}
	allDocuments := make([]*schema.Document, 0)

	webDocs, err := b.loader.LoadWebData(ctx)
	if err != nil {
		return nil, err
	}
	stats.WebDocs = len(webDocs)
	allDocuments = append(allDocuments, webDocs...)

	for _, faculty := range b.faculties {
		facultyDocs, err := b.loader.LoadFacultyData(ctx, faculty)
		if err != nil {
			return nil, err
		}
		stats.FacultyDocs += len(facultyDocs)
		allDocuments = append(allDocuments, facultyDocs...)
	}

	handbookDocs, err := b.loader.LoadHandbookData(ctx)
	if err != nil {
		return nil, err
	}
	stats.HandbookPages = len(handbookDocs)
	allDocuments = append(allDocuments, handbookDocs...)

	g.Log().Infof(ctx, "Total raw documents: %d", len(allDocuments))
	if len(allDocuments) == 0 {
		return nil, errors.New(errors.ErrIndexingFailed, "no documents found in any data source")
	}

	prepared := b.chunker.Prepare(ctx, allDocuments)
	stats.TotalChunks = len(prepared)
	if len(prepared) == 0 {
		return nil, errors.New(errors.ErrIndexingFailed, "no chunks produced from documents")
	}

	if err := b.store.EnsureReady(ctx); err != nil {
		return nil, err
	}

	indexed, err := b.indexChunks(ctx, prepared)
	if err != nil {
		return nil, err
	}
	stats.Indexed = indexed

	if idxStats, err := b.store.Stats(ctx); err == nil {
		stats.IndexCount = idxStats.Count
	} else {
		g.Log().Warningf(ctx, "Failed to read index stats after build: %v", err)
	}

	g.Log().Infof(ctx, "Knowledge base built: %d chunks indexed from %d documents",
		stats.Indexed, len(allDocuments))
	return stats, nil
}

// Rebuild 清空向量库后全量重建
func (b *Builder) Rebuild(ctx context.Context) (*BuildStats, error) {
	g.Log().Info(ctx, "Rebuilding knowledge base from scratch...")
	if err := b.store.DeleteAll(ctx); err != nil {
		return nil, err
	}
	return b.Build(ctx)
}

// indexChunks 按批嵌入并写入向量库
func (b *Builder) indexChunks(ctx context.Context, chunks []*schema.Document) (int, error) {
	indexed := 0
	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := b.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return indexed, err
		}

		vectors := make([]*schema.IndexedVector, len(batch))
		for i, chunk := range batch {
			vectors[i] = &schema.IndexedVector{
				Embedding: embeddings[i],
				Text:      chunk.Content,
				Metadata:  chunk.Metadata,
			}
		}

		if _, err := b.store.Upsert(ctx, vectors); err != nil {
			return indexed, err
		}
		indexed += len(batch)

		g.Log().Infof(ctx, "Indexed %d/%d chunks", indexed, len(chunks))
	}
	return indexed, nil
}
