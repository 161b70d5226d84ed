package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// Orchestrator 多provider编排：先调primary，失败后降级到fallback
// 统计各provider的成功调用与失败次数
type Orchestrator struct {
	primary  Provider
	fallback Provider

	mu    sync.Mutex
	stats map[string]int64
}

// NewOrchestrator 创建编排器，primary必须存在，fallback可以为nil
func NewOrchestrator(primary, fallback Provider) (*Orchestrator, error) {
	if primary == nil {
		return nil, errors.New(errors.ErrProviderNotConfigured,
			"no LLM provider available. Please configure llm.primary")
	}

	stats := map[string]int64{
		callsKey(primary):  0,
		errorsKey(primary): 0,
	}
	if fallback != nil {
		stats[callsKey(fallback)] = 0
		stats[errorsKey(fallback)] = 0
	}

	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		stats:    stats,
	}, nil
}

func callsKey(p Provider) string {
	return fmt.Sprintf("%s_calls", p.Name())
}

func errorsKey(p Provider) string {
	return fmt.Sprintf("%s_errors", p.Name())
}

// HasFallback 是否配置了降级provider
func (o *Orchestrator) HasFallback() bool {
	return o.fallback != nil
}

// Generate 生成回答
// primary成功计入其calls；失败计入其errors后转fallback
// useFallback为false或fallback缺失时primary失败直接报错
func (o *Orchestrator) Generate(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int, useFallback bool) (*Result, error) {
	if len(messages) == 0 {
		return nil, errors.New(errors.ErrEmptyInput, "messages cannot be empty")
	}

	g.Log().Infof(ctx, "Calling %s API...", o.primary.Name())
	result, err := o.primary.Generate(ctx, messages, temperature, maxTokens)
	if err == nil {
		o.increment(callsKey(o.primary))
		return result, nil
	}

	o.increment(errorsKey(o.primary))
	g.Log().Warningf(ctx, "%s API error: %v", o.primary.Name(), err)

	if !useFallback || o.fallback == nil {
		return nil, err
	}

	g.Log().Infof(ctx, "Calling %s API (fallback)...", o.fallback.Name())
	result, err = o.fallback.Generate(ctx, messages, temperature, maxTokens)
	if err == nil {
		o.increment(callsKey(o.fallback))
		return result, nil
	}

	o.increment(errorsKey(o.fallback))
	g.Log().Errorf(ctx, "%s API error: %v", o.fallback.Name(), err)
	return nil, errors.Newf(errors.ErrProviderFailed,
		"all LLM providers failed, last error: %v", err)
}

func (o *Orchestrator) increment(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats[key]++
}

// Stats 返回各provider的调用统计快照
func (o *Orchestrator) Stats() map[string]int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := make(map[string]int64, len(o.stats))
	for k, v := range o.stats {
		snapshot[k] = v
	}
	return snapshot
}
