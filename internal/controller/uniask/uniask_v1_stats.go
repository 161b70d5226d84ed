package uniask

import (
	"context"

	v1 "github.com/Malowking/uniask/api/uniask/v1"
	"github.com/Malowking/uniask/internal/service"
)

// Stats 统计接口：向量库规模与各provider调用计数
func (c *ControllerV1) Stats(ctx context.Context, req *v1.StatsReq) (res *v1.StatsRes, err error) {
	store, err := service.VectorStore()
	if err != nil {
		return nil, err
	}
	indexStats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	orchestrator, err := service.Orchestrator()
	if err != nil {
		return nil, err
	}

	return &v1.StatsRes{
		Index: indexStats,
		LLM:   orchestrator.Stats(),
	}, nil
}
