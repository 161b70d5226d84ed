package service

import (
	"context"
	"sync"

	"github.com/Malowking/uniask/core/chunker"
	"github.com/Malowking/uniask/core/config"
	"github.com/Malowking/uniask/core/embedding"
	"github.com/Malowking/uniask/core/file_store"
	"github.com/Malowking/uniask/core/generator"
	"github.com/Malowking/uniask/core/indexer"
	"github.com/Malowking/uniask/core/llm"
	"github.com/Malowking/uniask/core/retriever"
	"github.com/Malowking/uniask/core/vector_store"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"
)

// 进程级单例，懒加载，首次失败后保持失败状态不重试
var (
	vectorStoreOnce sync.Once
	vectorStoreInst vector_store.VectorStore
	vectorStoreErr  error

	embedderOnce sync.Once
	embedderInst *embedding.Embedder
	embedderErr  error

	orchestratorOnce sync.Once
	orchestratorInst *llm.Orchestrator
	orchestratorErr  error

	generatorOnce sync.Once
	generatorInst *generator.Generator
	generatorErr  error

	builderOnce sync.Once
	builderInst *indexer.Builder
	builderErr  error
)

// VectorStore returns the singleton vector database client
func VectorStore() (vector_store.VectorStore, error) {
	vectorStoreOnce.Do(func() {
		ctx := gctx.New()
		g.Log().Infof(ctx, "Initializing vector store with type: %s",
			g.Cfg().MustGet(ctx, "vectorStore.type", "milvus").String())
		vectorStoreInst, vectorStoreErr = vector_store.New(ctx)
		if vectorStoreErr == nil {
			g.Log().Info(ctx, "Vector store initialized successfully")
		}
	})
	return vectorStoreInst, vectorStoreErr
}

// Embedder returns the singleton embedding client
func Embedder() (*embedding.Embedder, error) {
	embedderOnce.Do(func() {
		ctx := gctx.New()
		embedderInst, embedderErr = embedding.New(ctx, config.LoadEmbedderConfig(ctx))
	})
	return embedderInst, embedderErr
}

// Orchestrator returns the singleton LLM orchestrator
func Orchestrator() (*llm.Orchestrator, error) {
	orchestratorOnce.Do(func() {
		ctx := gctx.New()
		orchestratorInst, orchestratorErr = buildOrchestrator(ctx)
	})
	return orchestratorInst, orchestratorErr
}

func buildOrchestrator(ctx context.Context) (*llm.Orchestrator, error) {
	conf := config.LoadLLMConfig(ctx)

	var primary, fallback llm.Provider
	if conf.Primary != nil {
		p, err := llm.NewProvider(ctx, conf.Primary)
		if err != nil {
			return nil, err
		}
		primary = p
		g.Log().Infof(ctx, "Primary LLM provider '%s' initialized", p.Name())
	}
	if conf.Fallback != nil {
		f, err := llm.NewProvider(ctx, conf.Fallback)
		if err != nil {
			g.Log().Warningf(ctx, "Failed to initialize fallback provider: %v", err)
		} else {
			fallback = f
			g.Log().Infof(ctx, "Fallback LLM provider '%s' initialized", f.Name())
		}
	}

	return llm.NewOrchestrator(primary, fallback)
}

// Generator returns the singleton RAG generator
func Generator() (*generator.Generator, error) {
	generatorOnce.Do(func() {
		ctx := gctx.New()
		generatorInst, generatorErr = buildGenerator(ctx)
	})
	return generatorInst, generatorErr
}

func buildGenerator(ctx context.Context) (*generator.Generator, error) {
	store, err := VectorStore()
	if err != nil {
		return nil, err
	}
	embedder, err := Embedder()
	if err != nil {
		return nil, err
	}
	orchestrator, err := Orchestrator()
	if err != nil {
		return nil, err
	}

	ragConf := config.LoadRAGConfig(ctx)
	ret, err := retriever.New(embedder, store, ragConf.TopK, ragConf.ScoreScale)
	if err != nil {
		return nil, err
	}

	llmConf := config.LoadLLMConfig(ctx)
	return generator.New(ret, orchestrator, llmConf.MaxAnswerTokens)
}

// Builder returns the singleton knowledge base builder
func Builder() (*indexer.Builder, error) {
	builderOnce.Do(func() {
		ctx := gctx.New()
		builderInst, builderErr = buildBuilder(ctx)
	})
	return builderInst, builderErr
}

func buildBuilder(ctx context.Context) (*indexer.Builder, error) {
	store, err := VectorStore()
	if err != nil {
		return nil, err
	}
	embedder, err := Embedder()
	if err != nil {
		return nil, err
	}
	storage, err := file_store.New(ctx)
	if err != nil {
		return nil, err
	}
	loader, err := indexer.NewLoader(storage)
	if err != nil {
		return nil, err
	}

	ragConf := config.LoadRAGConfig(ctx)
	chk, err := chunker.New(ragConf.ChunkSize, ragConf.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	faculties := g.Cfg().MustGet(ctx, "kb.faculties", []string{"FTS"}).Strings()
	batchSize := g.Cfg().MustGet(ctx, "kb.batchSize", indexer.DefaultBatchSize).Int()

	return indexer.NewBuilder(loader, chk, embedder, store, faculties, batchSize)
}
