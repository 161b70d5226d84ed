package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("正常配置", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)
		assert.Equal(t, 800, c.ChunkSize())
		assert.Equal(t, 100, c.Overlap())
	})

	t.Run("重叠等于窗口大小", func(t *testing.T) {
		_, err := New(100, 100)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("重叠大于窗口大小", func(t *testing.T) {
		_, err := New(100, 200)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("负重叠", func(t *testing.T) {
		_, err := New(100, -1)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("窗口大小非正", func(t *testing.T) {
		_, err := New(0, 0)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})
}

func TestSplit(t *testing.T) {
	t.Run("标准滑动窗口", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		text := strings.Repeat("A", 1000)
		chunks := c.Split(text)

		require.Len(t, chunks, 2)
		assert.Equal(t, strings.Repeat("A", 800), chunks[0])
		assert.Equal(t, strings.Repeat("A", 300), chunks[1]) // [700, 1000)
	})

	t.Run("文本短于窗口", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		chunks := c.Split("short text")
		require.Len(t, chunks, 1)
		assert.Equal(t, "short text", chunks[0])
	})

	t.Run("空文本", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		chunks := c.Split("")
		assert.Empty(t, chunks)
	})

	t.Run("分片去除首尾空白", func(t *testing.T) {
		c, err := New(10, 0)
		require.NoError(t, err)

		chunks := c.Split("  hello   ")
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0])
	})

	t.Run("纯空白窗口被丢弃", func(t *testing.T) {
		c, err := New(5, 0)
		require.NoError(t, err)

		chunks := c.Split("hello     world")
		require.Len(t, chunks, 2)
		assert.Equal(t, "hello", chunks[0])
		assert.Equal(t, "world", chunks[1])
	})

	t.Run("多字节字符不被切开", func(t *testing.T) {
		c, err := New(4, 0)
		require.NoError(t, err)

		chunks := c.Split("大学资讯服务平台")
		require.Len(t, chunks, 2)
		assert.Equal(t, "大学资讯", chunks[0])
		assert.Equal(t, "服务平台", chunks[1])
		for _, chunk := range chunks {
			assert.True(t, utf8.ValidString(chunk))
		}
	})

	t.Run("无重叠窗口", func(t *testing.T) {
		c, err := New(4, 0)
		require.NoError(t, err)

		chunks := c.Split("abcdefgh")
		require.Len(t, chunks, 2)
		assert.Equal(t, "abcd", chunks[0])
		assert.Equal(t, "efgh", chunks[1])
	})
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("过短文档跳过", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{
			{Content: "too short"},
			{Content: strings.Repeat("B", 200), Title: "kept"},
		}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 1)
		assert.Equal(t, strings.Repeat("B", 200), prepared[0].Content)
	})

	t.Run("长度刚好不足最小值", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{{Content: strings.Repeat("C", MinContentLength-1)}}
		assert.Empty(t, c.Prepare(ctx, docs))
	})

	t.Run("短文档整体保留且无分片序号", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{{
			Content: strings.Repeat("D", 300),
			Title:   "FAQ",
			Faculty: "FTS",
		}}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 1)
		assert.Equal(t, "FAQ", prepared[0].Metadata[schema.MetaTitle])
		assert.Equal(t, "FTS", prepared[0].Metadata[schema.MetaFaculty])
		_, hasIndex := prepared[0].Metadata[schema.MetaChunkIndex]
		assert.False(t, hasIndex)
	})

	t.Run("长度等于窗口大小仍分片", func(t *testing.T) {
		c, err := New(200, 50)
		require.NoError(t, err)

		docs := []*schema.Document{{Content: strings.Repeat("H", 200)}}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 1)
		assert.Equal(t, "0", prepared[0].Metadata[schema.MetaChunkIndex])
		assert.Equal(t, "1", prepared[0].Metadata[schema.MetaTotalChunk])
	})

	t.Run("长文档分片并编号", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{{
			Content: strings.Repeat("E", 1000),
			URL:     "https://example.edu/page",
		}}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 2)
		assert.Equal(t, "0", prepared[0].Metadata[schema.MetaChunkIndex])
		assert.Equal(t, "1", prepared[1].Metadata[schema.MetaChunkIndex])
		assert.Equal(t, "2", prepared[0].Metadata[schema.MetaTotalChunk])
		assert.Equal(t, "2", prepared[1].Metadata[schema.MetaTotalChunk])
		assert.Equal(t, "https://example.edu/page", prepared[0].Metadata[schema.MetaURL])
		assert.Equal(t, "https://example.edu/page", prepared[1].Metadata[schema.MetaURL])
	})

	t.Run("已有元数据键优先于顶层字段", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{{
			Content:  strings.Repeat("F", 200),
			Title:    "top-level title",
			Metadata: map[string]string{schema.MetaTitle: "existing title"},
		}}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 1)
		assert.Equal(t, "existing title", prepared[0].Metadata[schema.MetaTitle])
	})

	t.Run("分片元数据相互独立", func(t *testing.T) {
		c, err := New(800, 100)
		require.NoError(t, err)

		docs := []*schema.Document{{Content: strings.Repeat("G", 1000)}}
		prepared := c.Prepare(ctx, docs)

		require.Len(t, prepared, 2)
		prepared[0].Metadata["extra"] = "x"
		_, leaked := prepared[1].Metadata["extra"]
		assert.False(t, leaked)
	})
}
