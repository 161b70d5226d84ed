package llm

import (
	"context"

	"github.com/Malowking/uniask/core/config"
	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	einoSchema "github.com/cloudwego/eino/schema"
)

// Result 单次生成的结果及用量信息
type Result struct {
	// Content 生成的回答文本
	Content string
	// Model 实际使用的模型名称
	Model string
	// Provider 实际使用的provider名称
	Provider string
	// Usage token用量，上游未返回时为nil
	Usage *schema.TokenUsage
}

// Provider 单个LLM提供方
type Provider interface {
	// Name provider展示名，如 groq, openai
	Name() string
	// Model 模型名称
	Model() string
	// Generate 执行一次对话补全
	Generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int) (*Result, error)
}

// einoProvider 基于eino聊天模型的Provider实现
// Groq等OpenAI兼容服务通过 type=openai + 自定义BaseURL 接入
type einoProvider struct {
	name      string
	modelName string
	chat      einoModel.BaseChatModel
}

// NewProvider 按配置创建Provider，构造失败属于配置错误
func NewProvider(ctx context.Context, conf *config.ProviderConfig) (Provider, error) {
	if conf == nil {
		return nil, errors.New(errors.ErrProviderNotConfigured, "provider config is required")
	}
	if conf.Model == "" {
		return nil, errors.Newf(errors.ErrConfigMissing, "provider '%s' has no model configured", conf.Name)
	}
	if conf.APIKey == "" {
		return nil, errors.Newf(errors.ErrConfigMissing, "provider '%s' has no apiKey configured", conf.Name)
	}

	var chat einoModel.BaseChatModel
	var err error
	switch conf.Type {
	case "openai", "":
		chat, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  conf.APIKey,
			BaseURL: conf.BaseURL,
			Model:   conf.Model,
		})
	case "qwen":
		chat, err = qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			APIKey:  conf.APIKey,
			BaseURL: conf.BaseURL,
			Model:   conf.Model,
		})
	default:
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"unsupported provider type: %s. Supported types: openai, qwen", conf.Type)
	}
	if err != nil {
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"failed to create chat model for provider '%s': %v", conf.Name, err)
	}

	name := conf.Name
	if name == "" {
		name = conf.Type
	}

	return &einoProvider{
		name:      name,
		modelName: conf.Model,
		chat:      chat,
	}, nil
}

func (p *einoProvider) Name() string {
	return p.name
}

func (p *einoProvider) Model() string {
	return p.modelName
}

func (p *einoProvider) Generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int) (*Result, error) {
	in := make([]*einoSchema.Message, len(messages))
	for i, msg := range messages {
		in[i] = &einoSchema.Message{
			Role:    einoSchema.RoleType(msg.Role),
			Content: msg.Content,
		}
	}

	resp, err := p.chat.Generate(ctx, in,
		einoModel.WithTemperature(temperature),
		einoModel.WithMaxTokens(maxTokens))
	if err != nil {
		return nil, errors.Newf(errors.ErrProviderFailed, "provider '%s' call failed: %v", p.name, err)
	}

	result := &Result{
		Content:  resp.Content,
		Model:    p.modelName,
		Provider: p.name,
	}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		result.Usage = &schema.TokenUsage{
			PromptTokens:     resp.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: resp.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      resp.ResponseMeta.Usage.TotalTokens,
		}
	}
	return result, nil
}
