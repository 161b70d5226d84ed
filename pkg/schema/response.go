package schema

// TokenUsage 一次生成的token消耗，由应答的provider原样透传，核心不做本地估算
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationMetadata 生成响应附带的元信息
type GenerationMetadata struct {
	Query         string      `json:"query"`
	FacultyFilter string      `json:"faculty_filter,omitempty"`
	NumSources    int         `json:"num_sources"`
	Model         string      `json:"model"`
	Provider      string      `json:"provider"`
	Usage         *TokenUsage `json:"usage,omitempty"`
}

// GenerationResponse generate(query)的完整响应
type GenerationResponse struct {
	Answer   string              `json:"answer"`
	Sources  []*SourceInfo       `json:"sources"`
	Metadata *GenerationMetadata `json:"metadata"`
}
