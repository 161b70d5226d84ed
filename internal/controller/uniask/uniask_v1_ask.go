package uniask

import (
	"context"

	v1 "github.com/Malowking/uniask/api/uniask/v1"
	"github.com/Malowking/uniask/core/generator"
	"github.com/Malowking/uniask/internal/service"
)

// Ask 问答接口：检索知识库并生成带引用的回答
func (c *ControllerV1) Ask(ctx context.Context, req *v1.AskReq) (res *v1.AskRes, err error) {
	gen, err := service.Generator()
	if err != nil {
		return nil, err
	}

	resp, err := gen.Generate(ctx, &generator.Request{
		Query:       req.Query,
		Faculty:     req.Faculty,
		TopK:        req.TopK,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &v1.AskRes{
		Answer:   resp.Answer,
		Sources:  resp.Sources,
		Metadata: resp.Metadata,
	}, nil
}
