package chunker

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// MinContentLength 入库内容的最小长度（字符），过短的记录信息量不足，直接丢弃
const MinContentLength = 100

// Chunker 固定窗口文本分片器
// 窗口为 [start, start+chunkSize)，步长为 chunkSize-overlap
// 分片边界按字符（rune）计，多字节内容不会被从字符中间切开
type Chunker struct {
	chunkSize int
	overlap   int
}

// New 创建分片器
// overlap >= chunkSize 会导致窗口无法推进，属于配置错误
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, errors.Newf(errors.ErrChunkConfigInvalid, "chunkSize must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, errors.Newf(errors.ErrChunkConfigInvalid, "overlap cannot be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, errors.Newf(errors.ErrChunkConfigInvalid,
			"overlap (%d) must be smaller than chunkSize (%d)", overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize 返回窗口大小
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap 返回窗口重叠
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split 把文本切成滑动窗口分片
// 每个分片去除首尾空白，空分片丢弃；文本为空时返回空切片
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	chunks := make([]string, 0)
	step := c.chunkSize - c.overlap
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Prepare 把原始文档规范化为待嵌入的分片文档
//   - 内容去除首尾空白后不足 MinContentLength 的文档跳过
//   - 顶层的 url/title/faculty/source_type/department 合并进 Metadata，已有键优先
//   - 达到窗口大小的内容切片，每片追加 chunk_index/total_chunks
//   - 小于窗口大小的内容整体保留，不携带 chunk_index
func (c *Chunker) Prepare(ctx context.Context, docs []*schema.Document) []*schema.Document {
	prepared := make([]*schema.Document, 0, len(docs))
	skipped := 0

	for _, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		length := utf8.RuneCountInString(content)
		if length < MinContentLength {
			skipped++
			continue
		}

		metadata := mergeMetadata(doc)

		if length >= c.chunkSize {
			chunks := c.Split(content)
			total := strconv.Itoa(len(chunks))
			for i, chunk := range chunks {
				chunkMeta := make(map[string]string, len(metadata)+2)
				for k, v := range metadata {
					chunkMeta[k] = v
				}
				chunkMeta[schema.MetaChunkIndex] = strconv.Itoa(i)
				chunkMeta[schema.MetaTotalChunk] = total
				prepared = append(prepared, &schema.Document{
					Content:  chunk,
					Metadata: chunkMeta,
				})
			}
		} else {
			prepared = append(prepared, &schema.Document{
				Content:  content,
				Metadata: metadata,
			})
		}
	}

	if skipped > 0 {
		g.Log().Infof(ctx, "Skipped %d documents shorter than %d characters", skipped, MinContentLength)
	}
	g.Log().Infof(ctx, "Prepared %d chunks from %d documents", len(prepared), len(docs))

	return prepared
}

// mergeMetadata 把文档顶层字段合并进元数据，Metadata 中已有的键不覆盖
func mergeMetadata(doc *schema.Document) map[string]string {
	merged := make(map[string]string, len(doc.Metadata)+5)
	for k, v := range doc.Metadata {
		merged[k] = v
	}
	for key, val := range map[string]string{
		schema.MetaURL:        doc.URL,
		schema.MetaTitle:      doc.Title,
		schema.MetaFaculty:    doc.Faculty,
		schema.MetaSourceType: doc.SourceType,
		schema.MetaDepartment: doc.Department,
	} {
		if val == "" {
			continue
		}
		if _, exists := merged[key]; !exists {
			merged[key] = val
		}
	}
	return merged
}
