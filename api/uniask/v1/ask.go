package v1

import (
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type AskReq struct {
	g.Meta      `path:"/v1/ask" method:"post" tags:"uniask" summary:"Ask the university assistant"`
	Query       string  `p:"query" dc:"user question" v:"required|length:1,2000"`
	Faculty     string  `p:"faculty" dc:"optional faculty filter: FAS, FBS or FTS" v:"in:FAS,FBS,FTS"`
	TopK        int     `p:"top_k" dc:"number of chunks to retrieve" v:"max:20" d:"0"`
	Temperature float32 `p:"temperature" dc:"sampling temperature, 0 means default" v:"max:1" d:"0"`
}

type AskRes struct {
	g.Meta   `mime:"application/json"`
	Answer   string                     `json:"answer"`
	Sources  []*schema.SourceInfo       `json:"sources"`
	Metadata *schema.GenerationMetadata `json:"metadata"`
}
