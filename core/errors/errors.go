package errors

import (
	"fmt"
)

// AppError 应用业务错误
type AppError struct {
	Code    ErrCode // 业务错误码
	Message string  // 错误消息
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// New 创建新的业务错误
func New(code ErrCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 创建新的业务错误（格式化消息）
func Newf(code ErrCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsAppError 判断是否为业务错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取业务错误，如果不是则返回nil
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return nil
}

func codeInRange(err error, lo, hi ErrCode) bool {
	appErr := GetAppError(err)
	if appErr == nil {
		return false
	}
	return appErr.Code >= lo && appErr.Code <= hi
}

// IsInputError 调用方输入问题（空查询/空文本等）
func IsInputError(err error) bool {
	return codeInRange(err, 1001, 1999)
}

// IsProviderError embedding或LLM provider调用失败
func IsProviderError(err error) bool {
	return codeInRange(err, 2000, 2999)
}

// IsConfigurationError 构造期配置错误，致命且不应重试
func IsConfigurationError(err error) bool {
	return codeInRange(err, 3000, 3999)
}

// IsIndexError 向量库读写失败
func IsIndexError(err error) bool {
	return codeInRange(err, 5000, 5999)
}
