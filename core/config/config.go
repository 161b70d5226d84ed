package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/uniask/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// EmbedderConfig Embedding服务配置
type EmbedderConfig struct {
	APIKey    string // API密钥
	BaseURL   string // OpenAI兼容的embeddings接口地址
	Model     string // Embedding模型名称
	Dimension int    // 向量维度，索引生命周期内固定
}

// ProviderConfig 单个LLM provider配置
type ProviderConfig struct {
	Type    string // provider类型: openai / qwen
	Name    string // provider展示名，如 groq, openai
	APIKey  string
	BaseURL string
	Model   string
}

// LLMConfig LLM编排配置，Fallback可以为空
type LLMConfig struct {
	Primary         *ProviderConfig
	Fallback        *ProviderConfig
	MaxAnswerTokens int
}

// RAGConfig 检索增强生成的核心参数
type RAGConfig struct {
	ChunkSize    int     // 分片大小（字符）
	ChunkOverlap int     // 分片重叠（字符），必须小于ChunkSize
	TopK         int     // 默认检索条数
	// ScoreScale 距离→相关性换算的尺度: score = max(0, 1 - distance/scale)
	// 默认2.0，按L2度量标定；更换相似度度量时需要重新标定
	ScoreScale float64
}

// Config 实现 embedding config 接口风格的访问器
func (c *EmbedderConfig) GetAPIKey() string  { return c.APIKey }
func (c *EmbedderConfig) GetBaseURL() string { return c.BaseURL }
func (c *EmbedderConfig) GetModel() string   { return c.Model }
func (c *EmbedderConfig) GetDimension() int  { return c.Dimension }

// LoadEmbedderConfig 从配置文件读取embedding配置
func LoadEmbedderConfig(ctx context.Context) *EmbedderConfig {
	return &EmbedderConfig{
		APIKey:    g.Cfg().MustGet(ctx, "embedding.apiKey", "").String(),
		BaseURL:   g.Cfg().MustGet(ctx, "embedding.baseURL", "").String(),
		Model:     g.Cfg().MustGet(ctx, "embedding.model", "").String(),
		Dimension: g.Cfg().MustGet(ctx, "embedding.dimension", 384).Int(),
	}
}

// LoadLLMConfig 从配置文件读取LLM编排配置
func LoadLLMConfig(ctx context.Context) *LLMConfig {
	conf := &LLMConfig{
		MaxAnswerTokens: g.Cfg().MustGet(ctx, "llm.maxAnswerTokens", 1000).Int(),
	}
	if g.Cfg().MustGet(ctx, "llm.primary.model", "").String() != "" {
		conf.Primary = loadProviderConfig(ctx, "llm.primary")
	}
	if g.Cfg().MustGet(ctx, "llm.fallback.model", "").String() != "" {
		conf.Fallback = loadProviderConfig(ctx, "llm.fallback")
	}
	return conf
}

func loadProviderConfig(ctx context.Context, prefix string) *ProviderConfig {
	return &ProviderConfig{
		Type:    g.Cfg().MustGet(ctx, prefix+".type", "openai").String(),
		Name:    g.Cfg().MustGet(ctx, prefix+".name", "").String(),
		APIKey:  g.Cfg().MustGet(ctx, prefix+".apiKey", "").String(),
		BaseURL: g.Cfg().MustGet(ctx, prefix+".baseURL", "").String(),
		Model:   g.Cfg().MustGet(ctx, prefix+".model", "").String(),
	}
}

// LoadRAGConfig 从配置文件读取RAG参数
func LoadRAGConfig(ctx context.Context) *RAGConfig {
	return &RAGConfig{
		ChunkSize:    g.Cfg().MustGet(ctx, "rag.chunkSize", 800).Int(),
		ChunkOverlap: g.Cfg().MustGet(ctx, "rag.chunkOverlap", 100).Int(),
		TopK:         g.Cfg().MustGet(ctx, "rag.topK", 5).Int(),
		ScoreScale:   g.Cfg().MustGet(ctx, "rag.scoreScale", 2.0).Float64(),
	}
}

// CollectionName 向量库固定集合名
func CollectionName(ctx context.Context) string {
	return g.Cfg().MustGet(ctx, "vectorStore.collection", "university_docs").String()
}

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证向量库配置
	storeType := g.Cfg().MustGet(ctx, "vectorStore.type", "milvus").String()
	switch storeType {
	case "milvus":
		if g.Cfg().MustGet(ctx, "milvus.address", "").String() == "" {
			missingConfigs = append(missingConfigs, "milvus.address")
		}
	case "pgvector":
		for _, key := range []string{"postgres.host", "postgres.user", "postgres.database"} {
			if g.Cfg().MustGet(ctx, key, "").String() == "" {
				missingConfigs = append(missingConfigs, key)
			}
		}
	default:
		return errors.Newf(errors.ErrConfigInvalid,
			"unsupported vectorStore.type: %s. Supported types: milvus, pgvector", storeType)
	}

	// 验证 Embedding 配置
	for _, key := range []string{"embedding.apiKey", "embedding.baseURL", "embedding.model"} {
		if g.Cfg().MustGet(ctx, key, "").String() == "" {
			missingConfigs = append(missingConfigs, key)
		}
	}
	if g.Cfg().MustGet(ctx, "embedding.dimension", 0).Int() <= 0 {
		missingConfigs = append(missingConfigs, "embedding.dimension")
	}

	// 验证 LLM 配置：至少要有primary，fallback缺失只降级告警
	if g.Cfg().MustGet(ctx, "llm.primary.model", "").String() == "" {
		missingConfigs = append(missingConfigs, "llm.primary.model")
	}
	if g.Cfg().MustGet(ctx, "llm.primary.apiKey", "").String() == "" {
		missingConfigs = append(missingConfigs, "llm.primary.apiKey")
	}
	if g.Cfg().MustGet(ctx, "llm.fallback.model", "").String() == "" {
		warnings = append(warnings, "llm.fallback is not set, provider failover disabled")
	}

	// 验证 RAG 参数
	ragConf := LoadRAGConfig(ctx)
	if ragConf.ChunkSize <= 0 {
		return errors.Newf(errors.ErrChunkConfigInvalid, "rag.chunkSize must be positive, got %d", ragConf.ChunkSize)
	}
	if ragConf.ChunkOverlap < 0 || ragConf.ChunkOverlap >= ragConf.ChunkSize {
		return errors.Newf(errors.ErrChunkConfigInvalid,
			"rag.chunkOverlap must be in [0, chunkSize), got overlap=%d chunkSize=%d",
			ragConf.ChunkOverlap, ragConf.ChunkSize)
	}
	if ragConf.ScoreScale <= 0 {
		return errors.Newf(errors.ErrConfigInvalid, "rag.scoreScale must be positive, got %f", ragConf.ScoreScale)
	}

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return errors.New(errors.ErrConfigMissing, fmt.Sprintf(
			"missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured",
			strings.Join(missingConfigs, "\n- ")))
	}

	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}
