package retriever

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/core/vector_store"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// Embedder 查询向量生成接口
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]float32, error)
}

// Retriever 语义检索器：查询向量化、近邻检索、相关性打分、上下文拼装
type Retriever struct {
	embedder Embedder
	store    vector_store.VectorStore
	topK     int
	// scoreScale 距离→相关性换算尺度: score = max(0, 1 - distance/scale)
	scoreScale float64
}

// New 创建检索器
func New(embedder Embedder, store vector_store.VectorStore, topK int, scoreScale float64) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New(errors.ErrConfigMissing, "embedder is required")
	}
	if store == nil {
		return nil, errors.New(errors.ErrConfigMissing, "vector store is required")
	}
	if topK <= 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "topK must be positive, got %d", topK)
	}
	if scoreScale <= 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "scoreScale must be positive, got %f", scoreScale)
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		topK:       topK,
		scoreScale: scoreScale,
	}, nil
}

// RelevanceScore 把原始距离换算成[0,1]的相关性得分，保留3位小数
func (r *Retriever) RelevanceScore(distance float64) float64 {
	score := 1 - distance/r.scoreScale
	if score < 0 {
		score = 0
	}
	return math.Round(score*1000) / 1000
}

// Retrieve 检索与查询最相关的分片，按距离升序返回并标注排名
// topK <= 0 时使用构造时的默认值
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, filters map[string]string) ([]*schema.ScoredSource, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrEmptyInput, "query cannot be empty")
	}
	if topK <= 0 {
		topK = r.topK
	}

	embedding, err := r.embedder.EmbedString(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Search(ctx, embedding, topK, filters)
	if err != nil {
		return nil, err
	}

	scored := make([]*schema.ScoredSource, len(results))
	for i, res := range results {
		scored[i] = &schema.ScoredSource{
			Rank:           i + 1,
			Content:        res.Text,
			Metadata:       res.Metadata,
			Distance:       res.Distance,
			RelevanceScore: r.RelevanceScore(res.Distance),
		}
	}

	g.Log().Debugf(ctx, "Retrieved %d chunks for query (topK=%d, filters=%d)", len(scored), topK, len(filters))
	return scored, nil
}

// RetrieveWithContext 检索并拼装LLM上下文
// 上下文为 "[Source N]\n<content>\n" 按排名用空行连接，无结果时为空字符串
func (r *Retriever) RetrieveWithContext(ctx context.Context, query string, topK int, filters map[string]string) (*schema.RetrievalContext, error) {
	scored, err := r.Retrieve(ctx, query, topK, filters)
	if err != nil {
		return nil, err
	}
	return BuildContext(scored), nil
}

// BuildContext 把打分结果拼装成上下文与来源列表
func BuildContext(scored []*schema.ScoredSource) *schema.RetrievalContext {
	blocks := make([]string, len(scored))
	sources := make([]*schema.SourceInfo, len(scored))

	for i, s := range scored {
		blocks[i] = fmt.Sprintf("[Source %d]\n%s\n", s.Rank, s.Content)
		sources[i] = &schema.SourceInfo{
			ID:             s.Rank,
			Title:          s.Metadata[schema.MetaTitle],
			URL:            s.Metadata[schema.MetaURL],
			Faculty:        s.Metadata[schema.MetaFaculty],
			SourceType:     s.Metadata[schema.MetaSourceType],
			RelevanceScore: s.RelevanceScore,
		}
	}

	return &schema.RetrievalContext{
		Context: strings.Join(blocks, "\n\n"),
		Sources: sources,
	}
}
