package uniask

import (
	"context"

	v1 "github.com/Malowking/uniask/api/uniask/v1"
	"github.com/Malowking/uniask/core/indexer"
	"github.com/Malowking/uniask/internal/service"
)

// KnowledgeRebuild 知识库构建接口
// from_scratch为true时先清空索引再全量重建
func (c *ControllerV1) KnowledgeRebuild(ctx context.Context, req *v1.KnowledgeRebuildReq) (res *v1.KnowledgeRebuildRes, err error) {
	builder, err := service.Builder()
	if err != nil {
		return nil, err
	}

	var stats *indexer.BuildStats
	if req.FromScratch {
		stats, err = builder.Rebuild(ctx)
	} else {
		stats, err = builder.Build(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &v1.KnowledgeRebuildRes{Stats: stats}, nil
}
