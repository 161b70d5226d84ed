package vector_store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterExpr(t *testing.T) {
	t.Run("无过滤条件", func(t *testing.T) {
		expr, err := buildFilterExpr(nil)
		require.NoError(t, err)
		assert.Equal(t, "", expr)
	})

	t.Run("单个条件", func(t *testing.T) {
		expr, err := buildFilterExpr(map[string]string{"faculty": "FTS"})
		require.NoError(t, err)
		assert.Equal(t, `metadata["faculty"] == "FTS"`, expr)
	})

	t.Run("值中的双引号被转义", func(t *testing.T) {
		expr, err := buildFilterExpr(map[string]string{"title": `say "hi"`})
		require.NoError(t, err)
		assert.Equal(t, `metadata["title"] == "say \"hi\""`, expr)
	})

	t.Run("值中的反斜杠被转义", func(t *testing.T) {
		expr, err := buildFilterExpr(map[string]string{"path": `a\b`})
		require.NoError(t, err)
		assert.Equal(t, `metadata["path"] == "a\\b"`, expr)
	})

	t.Run("非法过滤键被拒绝", func(t *testing.T) {
		_, err := buildFilterExpr(map[string]string{`fa"culty`: "FTS"})
		require.Error(t, err)
	})

	t.Run("多条件AND拼接", func(t *testing.T) {
		expr, err := buildFilterExpr(map[string]string{
			"faculty":     "FBS",
			"source_type": "handbook_pdf",
		})
		require.NoError(t, err)
		assert.Contains(t, expr, `metadata["faculty"] == "FBS"`)
		assert.Contains(t, expr, `metadata["source_type"] == "handbook_pdf"`)
		assert.Contains(t, expr, " and ")
	})
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", truncateString("abc", 5))
	assert.Equal(t, "ab", truncateString("abcde", 2))
}

func TestMarshalMetadata(t *testing.T) {
	t.Run("空元数据序列化为空对象", func(t *testing.T) {
		data, err := marshalMetadata(nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})

	t.Run("字符串键值对", func(t *testing.T) {
		data, err := marshalMetadata(map[string]string{"faculty": "FAS"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"faculty":"FAS"}`, string(data))
	})
}
