package llm

import (
	"context"
	"testing"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name   string
	model  string
	result *Result
	err    error
	calls  int
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.model }

func (f *fakeProvider) Generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testMessages() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("system"),
		schema.UserMessage("hello"),
	}
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("缺少primary", func(t *testing.T) {
		_, err := NewOrchestrator(nil, nil)
		require.Error(t, err)
		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrProviderNotConfigured, appErr.Code)
	})

	t.Run("统计初始为0", func(t *testing.T) {
		o, err := NewOrchestrator(
			&fakeProvider{name: "groq"},
			&fakeProvider{name: "openai"},
		)
		require.NoError(t, err)

		stats := o.Stats()
		assert.Equal(t, int64(0), stats["groq_calls"])
		assert.Equal(t, int64(0), stats["groq_errors"])
		assert.Equal(t, int64(0), stats["openai_calls"])
		assert.Equal(t, int64(0), stats["openai_errors"])
	})

	t.Run("无fallback时统计只含primary", func(t *testing.T) {
		o, err := NewOrchestrator(&fakeProvider{name: "groq"}, nil)
		require.NoError(t, err)
		assert.False(t, o.HasFallback())
		assert.Len(t, o.Stats(), 2)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("primary成功", func(t *testing.T) {
		primary := &fakeProvider{name: "groq", result: &Result{Content: "answer", Provider: "groq"}}
		fallback := &fakeProvider{name: "openai", result: &Result{Content: "backup", Provider: "openai"}}
		o, err := NewOrchestrator(primary, fallback)
		require.NoError(t, err)

		result, err := o.Generate(ctx, testMessages(), 0.7, 1000, true)
		require.NoError(t, err)
		assert.Equal(t, "answer", result.Content)
		assert.Equal(t, "groq", result.Provider)
		assert.Equal(t, 0, fallback.calls)

		stats := o.Stats()
		assert.Equal(t, int64(1), stats["groq_calls"])
		assert.Equal(t, int64(0), stats["groq_errors"])
		assert.Equal(t, int64(0), stats["openai_calls"])
	})

	t.Run("primary失败降级到fallback", func(t *testing.T) {
		primary := &fakeProvider{name: "groq", err: errors.New(errors.ErrProviderFailed, "rate limited")}
		fallback := &fakeProvider{name: "openai", result: &Result{Content: "backup", Provider: "openai"}}
		o, err := NewOrchestrator(primary, fallback)
		require.NoError(t, err)

		result, err := o.Generate(ctx, testMessages(), 0.7, 1000, true)
		require.NoError(t, err)
		assert.Equal(t, "backup", result.Content)
		assert.Equal(t, "openai", result.Provider)

		stats := o.Stats()
		assert.Equal(t, int64(0), stats["groq_calls"])
		assert.Equal(t, int64(1), stats["groq_errors"])
		assert.Equal(t, int64(1), stats["openai_calls"])
		assert.Equal(t, int64(0), stats["openai_errors"])
	})

	t.Run("两个provider都失败", func(t *testing.T) {
		primary := &fakeProvider{name: "groq", err: errors.New(errors.ErrProviderFailed, "down")}
		fallback := &fakeProvider{name: "openai", err: errors.New(errors.ErrProviderFailed, "also down")}
		o, err := NewOrchestrator(primary, fallback)
		require.NoError(t, err)

		_, err = o.Generate(ctx, testMessages(), 0.7, 1000, true)
		require.Error(t, err)
		assert.True(t, errors.IsProviderError(err))

		stats := o.Stats()
		assert.Equal(t, int64(1), stats["groq_errors"])
		assert.Equal(t, int64(1), stats["openai_errors"])
	})

	t.Run("禁用fallback时primary失败直接报错", func(t *testing.T) {
		primary := &fakeProvider{name: "groq", err: errors.New(errors.ErrProviderFailed, "down")}
		fallback := &fakeProvider{name: "openai", result: &Result{Content: "backup"}}
		o, err := NewOrchestrator(primary, fallback)
		require.NoError(t, err)

		_, err = o.Generate(ctx, testMessages(), 0.7, 1000, false)
		require.Error(t, err)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("无fallback时primary失败直接报错", func(t *testing.T) {
		primary := &fakeProvider{name: "groq", err: errors.New(errors.ErrProviderFailed, "down")}
		o, err := NewOrchestrator(primary, nil)
		require.NoError(t, err)

		_, err = o.Generate(ctx, testMessages(), 0.7, 1000, true)
		require.Error(t, err)
		assert.True(t, errors.IsProviderError(err))
	})

	t.Run("空消息被拒绝", func(t *testing.T) {
		o, err := NewOrchestrator(&fakeProvider{name: "groq", result: &Result{}}, nil)
		require.NoError(t, err)

		_, err = o.Generate(ctx, nil, 0.7, 1000, true)
		require.Error(t, err)
		assert.True(t, errors.IsInputError(err))
	})
}
