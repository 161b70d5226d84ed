package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 输入错误 1000-1999（调用方参数问题，直接拒绝，不重试）
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrEmptyInput       ErrCode = 1002 // 输入为空
	ErrNotFound         ErrCode = 1003 // 资源未找到
	ErrInternalError    ErrCode = 1004 // 内部错误

	// 模型/Provider相关 2000-2999
	ErrEmbeddingFailed       ErrCode = 2001 // Embedding失败
	ErrProviderFailed        ErrCode = 2002 // LLM provider调用失败（含fallback耗尽）
	ErrProviderNotConfigured ErrCode = 2003 // 未配置任何provider

	// 配置相关 3000-3999（构造期致命，不重试）
	ErrConfigMissing      ErrCode = 3001 // 缺失必需配置
	ErrChunkConfigInvalid ErrCode = 3002 // 分片配置无效
	ErrConfigInvalid      ErrCode = 3003 // 配置取值无效

	// 向量数据库 5000-5999
	ErrVectorStoreInit ErrCode = 5001 // 向量库初始化失败
	ErrVectorSearch    ErrCode = 5002 // 向量搜索失败
	ErrVectorInsert    ErrCode = 5003 // 向量插入失败
	ErrVectorDelete    ErrCode = 5004 // 向量删除失败
	ErrVectorStats     ErrCode = 5005 // 向量库统计失败

	// 文件存储 6000-6999
	ErrFileReadFailed  ErrCode = 6001 // 文件读取失败
	ErrFileWriteFailed ErrCode = 6002 // 文件写入失败

	// 索引构建 7000-7999
	ErrIndexingFailed ErrCode = 7001 // 知识库构建失败
)

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch {
	case e >= 1001 && e <= 1999:
		switch e {
		case ErrInvalidParameter, ErrEmptyInput:
			return 400
		case ErrNotFound:
			return 404
		default:
			return 500
		}
	case e >= 2000 && e <= 2999:
		// provider耗尽对调用方是上游故障
		return 502
	case e >= 3000 && e <= 3999:
		return 500
	default:
		return 500
	}
}
