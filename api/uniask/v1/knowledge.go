package v1

import (
	"github.com/Malowking/uniask/core/indexer"
	"github.com/gogf/gf/v2/frame/g"
)

type KnowledgeRebuildReq struct {
	g.Meta      `path:"/v1/knowledge/rebuild" method:"post" tags:"uniask" summary:"Build or rebuild the knowledge base"`
	FromScratch bool `p:"from_scratch" dc:"drop existing index before building" d:"false"`
}

type KnowledgeRebuildRes struct {
	g.Meta `mime:"application/json"`
	Stats  *indexer.BuildStats `json:"stats"`
}
