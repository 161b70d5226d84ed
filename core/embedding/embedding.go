package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/Malowking/uniask/core/config"
	"github.com/Malowking/uniask/core/errors"
	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/gogf/gf/v2/frame/g"
)

// Embedder 句向量生成器，包装OpenAI兼容的embeddings接口
// 构造即建立客户端，构造失败视为致命错误，上层不得静默重试
type Embedder struct {
	model     string
	dimension int
	client    *openaiembed.Embedder
}

// New 创建Embedder
func New(ctx context.Context, conf *config.EmbedderConfig) (*Embedder, error) {
	if conf == nil {
		return nil, errors.New(errors.ErrConfigMissing, "embedding config is required")
	}
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrConfigMissing, "embedding.apiKey is required")
	}
	if conf.BaseURL == "" {
		return nil, errors.New(errors.ErrConfigMissing, "embedding.baseURL is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrConfigMissing, "embedding.model is required")
	}
	if conf.Dimension <= 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "embedding.dimension must be positive, got %d", conf.Dimension)
	}

	dim := conf.Dimension
	client, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:     conf.APIKey,
		BaseURL:    conf.BaseURL,
		Model:      conf.Model,
		Dimensions: &dim,
		Timeout:    5 * time.Minute,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrConfigInvalid, "failed to create embedding client: %v", err)
	}

	g.Log().Infof(ctx, "Embedding model '%s' ready, dimension: %d", conf.Model, dim)

	return &Embedder{
		model:     conf.Model,
		dimension: dim,
		client:    client,
	}, nil
}

// Dimension 返回向量维度
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Model 返回模型名称
func (e *Embedder) Model() string {
	return e.model
}

// EmbedString 生成单条文本的向量
func (e *Embedder) EmbedString(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrEmptyInput, "text cannot be empty")
	}

	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedStrings 批量生成向量，输出与输入顺序、长度一一对应
func (e *Embedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New(errors.ErrEmptyInput, "texts list cannot be empty")
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	raw, err := e.client.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "embedding request failed: %v", err)
	}
	if len(raw) != len(texts) {
		return nil, errors.Newf(errors.ErrEmbeddingFailed,
			"response length (%d) doesn't match input length (%d)", len(raw), len(texts))
	}

	// 转换为float32，与向量库存储格式一致
	result := make([][]float32, len(raw))
	for i, vec := range raw {
		if len(vec) != e.dimension {
			return nil, errors.Newf(errors.ErrEmbeddingFailed,
				"unexpected vector dimension %d, want %d", len(vec), e.dimension)
		}
		f32 := make([]float32, len(vec))
		for j, v := range vec {
			f32[j] = float32(v)
		}
		result[i] = f32
	}
	return result, nil
}
