package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/core/llm"
	"github.com/Malowking/uniask/core/prompt"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// ContextRetriever 检索并拼装上下文的接口
type ContextRetriever interface {
	RetrieveWithContext(ctx context.Context, query string, topK int, filters map[string]string) (*schema.RetrievalContext, error)
}

// AnswerGenerator LLM编排接口
type AnswerGenerator interface {
	Generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int, useFallback bool) (*llm.Result, error)
}

// DefaultTemperature 未指定时的采样温度
const DefaultTemperature float32 = 0.7

// Request 一次问答请求
type Request struct {
	// Query 用户问题
	Query string
	// Faculty 可选的学院过滤（FAS/FBS/FTS），空值不过滤
	Faculty string
	// TopK 检索条数，非正时使用检索器默认值
	TopK int
	// Temperature 采样温度，0时使用默认值
	Temperature float32
}

// Generator RAG问答门面：检索→组装提示词→生成回答
type Generator struct {
	retriever       ContextRetriever
	orchestrator    AnswerGenerator
	maxAnswerTokens int
}

// New 创建Generator
func New(retriever ContextRetriever, orchestrator AnswerGenerator, maxAnswerTokens int) (*Generator, error) {
	if retriever == nil {
		return nil, errors.New(errors.ErrConfigMissing, "retriever is required")
	}
	if orchestrator == nil {
		return nil, errors.New(errors.ErrConfigMissing, "orchestrator is required")
	}
	if maxAnswerTokens <= 0 {
		maxAnswerTokens = 1000
	}
	return &Generator{
		retriever:       retriever,
		orchestrator:    orchestrator,
		maxAnswerTokens: maxAnswerTokens,
	}, nil
}

// Generate 执行完整的问答流程
func (gen *Generator) Generate(ctx context.Context, req *Request) (*schema.GenerationResponse, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, errors.New(errors.ErrEmptyInput, "query cannot be empty")
	}

	g.Log().Infof(ctx, "Generating response for: '%s'", req.Query)

	var filters map[string]string
	if req.Faculty != "" {
		filters = map[string]string{schema.MetaFaculty: req.Faculty}
	}

	rc, err := gen.retriever.RetrieveWithContext(ctx, req.Query, req.TopK, filters)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "Retrieved %d sources", len(rc.Sources))

	messages := prompt.Compose(req.Query, rc.Context)

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	result, err := gen.orchestrator.Generate(ctx, messages, temperature, gen.maxAnswerTokens, true)
	if err != nil {
		return nil, err
	}

	g.Log().Infof(ctx, "Response generated using %s", result.Provider)

	return &schema.GenerationResponse{
		Answer:  result.Content,
		Sources: rc.Sources,
		Metadata: &schema.GenerationMetadata{
			Query:         req.Query,
			FacultyFilter: req.Faculty,
			NumSources:    len(rc.Sources),
			Model:         result.Model,
			Provider:      result.Provider,
			Usage:         result.Usage,
		},
	}, nil
}

// FormatForDisplay 把回答与来源列表格式化成展示文本
func FormatForDisplay(resp *schema.GenerationResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(resp.Answer)
	sb.WriteString("\n\n")

	if len(resp.Sources) > 0 {
		sb.WriteString("---\n**Sources:**\n")
		for _, source := range resp.Sources {
			title := source.Title
			if title == "" {
				title = "Untitled"
			}
			sb.WriteString(fmt.Sprintf("\n%d. **%s**", source.ID, title))
			if source.Faculty != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", source.Faculty))
			}
			if source.URL != "" {
				sb.WriteString(fmt.Sprintf("\n   %s", source.URL))
			}
			sb.WriteString(fmt.Sprintf("\n   Relevance: %.2f%%\n", source.RelevanceScore*100))
		}
	}

	return sb.String()
}
