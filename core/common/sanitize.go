package common

import (
	"regexp"
	"strings"
)

// SanitizeFilterValue 转义 Milvus 过滤表达式中的特殊字符
// 防止通过元数据过滤值进行表达式注入
func SanitizeFilterValue(s string) string {
	// 转义反斜杠（必须先转义）
	s = strings.ReplaceAll(s, `\`, `\\`)
	// 转义双引号
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

var filterKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateFilterKey 验证元数据过滤键（只允许字母、数字、下划线，字母或下划线开头）
// 过滤键会拼入后端查询表达式，非法键直接拒绝
func ValidateFilterKey(key string) bool {
	if len(key) == 0 || len(key) > 255 {
		return false
	}
	return filterKeyPattern.MatchString(key)
}

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateCollectionName 验证集合名称
// Milvus 集合名称规范: 1-255 字符，字母开头，只能包含字母、数字、下划线
func ValidateCollectionName(name string) bool {
	if len(name) == 0 || len(name) > 255 {
		return false
	}
	return collectionNamePattern.MatchString(name)
}
