package v1

import (
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type StatsReq struct {
	g.Meta `path:"/v1/stats" method:"get" tags:"uniask" summary:"Index and provider usage statistics"`
}

type StatsRes struct {
	g.Meta `mime:"application/json"`
	Index  *schema.IndexStats `json:"index"`
	LLM    map[string]int64   `json:"llm"`
}
