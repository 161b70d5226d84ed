package schema

// Document 表示待入库的原始文档记录
// 由内容采集侧（爬虫/手册处理脚本）产出，核心只消费规范化后的结构
type Document struct {
	// Content 文档正文
	Content string `json:"content"`
	// Metadata 文档元数据，所有值统一为字符串
	Metadata map[string]string `json:"metadata,omitempty"`

	// 采集脚本可能把以下字段放在顶层，入库前合并进 Metadata
	// 合并时已有的 Metadata 键优先
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	Faculty    string `json:"faculty,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	Department string `json:"department,omitempty"`
}

// 常用元数据键
const (
	MetaTitle      = "title"
	MetaURL        = "url"
	MetaFaculty    = "faculty"
	MetaSourceType = "source_type"
	MetaDepartment = "department"
	MetaYear       = "year"
	MetaPageNumber = "page_number"
	MetaSourceFile = "source_file"
	MetaChunkIndex = "chunk_index"
	MetaTotalChunk = "total_chunks"
)

// 来源类型取值
const (
	SourceTypeWeb        = "web"
	SourceTypeFacultyWeb = "faculty_web"
	SourceTypeHandbook   = "handbook_pdf"
)

// IndexedVector 表示向量库中的一条记录
type IndexedVector struct {
	// ID 唯一标识，为空时由向量库在写入前生成UUID
	ID string `json:"id,omitempty"`
	// Embedding 向量，维度在索引生命周期内固定
	Embedding []float32 `json:"embedding"`
	// Text 分片原文
	Text string `json:"text"`
	// Metadata 字符串元数据，过滤只支持精确的字符串相等匹配
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult 向量检索的单条结果
type SearchResult struct {
	ID string `json:"id"`
	// Text 分片原文
	Text string `json:"document_text"`
	// Metadata 入库时存储的字符串元数据
	Metadata map[string]string `json:"metadata,omitempty"`
	// Distance 原始距离，越小越相似，非负
	Distance float64 `json:"distance"`
}

// ScoredSource 打分后的检索结果
type ScoredSource struct {
	// Rank 从1开始的排名，与检索顺序一致
	Rank int `json:"rank"`
	// Content 分片原文
	Content string `json:"content"`
	// Metadata 入库时存储的字符串元数据
	Metadata map[string]string `json:"metadata,omitempty"`
	// Distance 原始距离
	Distance float64 `json:"distance"`
	// RelevanceScore 归一化相关性得分，区间[0,1]，保留3位小数
	RelevanceScore float64 `json:"relevance_score"`
}

// SourceInfo 上下文中来源的摘要信息
// ID 是1开始的序号，与 context 中的 [Source N] 标记一一对应
type SourceInfo struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Faculty        string  `json:"faculty"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// RetrievalContext 检索结果拼装出的LLM上下文
type RetrievalContext struct {
	// Context 形如 "[Source N]\n<content>\n" 按排名拼接的文本块
	// 检索为空时为空字符串
	Context string `json:"context"`
	// Sources 与 Context 中标记平行的来源列表，Sources[i].ID == i+1
	Sources []*SourceInfo `json:"sources"`
}

// IndexStats 向量库统计信息
type IndexStats struct {
	Count     int64 `json:"count"`
	Dimension int   `json:"dimension"`
}
