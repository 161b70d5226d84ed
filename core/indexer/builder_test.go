package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Malowking/uniask/core/chunker"
	"github.com/Malowking/uniask/core/file_store"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	dimension int
	calls     int
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dimension)
	}
	return vectors, nil
}

type fakeStore struct {
	upserted   []*schema.IndexedVector
	deletedAll bool
	ready      bool
}

func (f *fakeStore) EnsureReady(ctx context.Context) error {
	f.ready = true
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, vectors []*schema.IndexedVector) ([]string, error) {
	f.upserted = append(f.upserted, vectors...)
	ids := make([]string, len(vectors))
	return ids, nil
}

func (f *fakeStore) Search(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]*schema.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) DeleteAll(ctx context.Context) error {
	f.deletedAll = true
	f.upserted = nil
	return nil
}

func (f *fakeStore) Stats(ctx context.Context) (*schema.IndexStats, error) {
	return &schema.IndexStats{Count: int64(len(f.upserted)), Dimension: 4}, nil
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

func writeFixture(t *testing.T, root, name, content string) {
	t.Helper()
	fullPath := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
}

func longText(n int) string {
	return strings.Repeat("University of Vavuniya admission information. ", n/46+1)[:n]
}

func newTestLoader(t *testing.T, root string) *Loader {
	t.Helper()
	storage, err := file_store.NewLocalStorage(root)
	require.NoError(t, err)
	loader, err := NewLoader(storage)
	require.NoError(t, err)
	return loader
}

func TestLoadHandbookData(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	t.Run("手册按页展开", func(t *testing.T) {
		writeFixture(t, root, "processed/handbooks_processed_latest.json", `[
			{
				"faculty": "FAS",
				"department": "Computer Science",
				"year": 2023,
				"source_file": "fas_cs_handbook.pdf",
				"pages": [
					{"page_number": 1, "content": "page one content"},
					{"page_number": 2, "content": "page two content"}
				]
			}
		]`)

		loader := newTestLoader(t, root)
		docs, err := loader.LoadHandbookData(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Equal(t, "page one content", docs[0].Content)
		assert.Equal(t, schema.SourceTypeHandbook, docs[0].Metadata[schema.MetaSourceType])
		assert.Equal(t, "FAS", docs[0].Metadata[schema.MetaFaculty])
		assert.Equal(t, "Computer Science", docs[0].Metadata[schema.MetaDepartment])
		assert.Equal(t, "2023", docs[0].Metadata[schema.MetaYear])
		assert.Equal(t, "1", docs[0].Metadata[schema.MetaPageNumber])
		assert.Equal(t, "fas_cs_handbook.pdf", docs[0].Metadata[schema.MetaSourceFile])
		assert.Equal(t, "FAS Computer Science Handbook - Page 1", docs[0].Metadata[schema.MetaTitle])
		assert.Equal(t, "2", docs[1].Metadata[schema.MetaPageNumber])
	})

	t.Run("文件缺失时返回空列表", func(t *testing.T) {
		loader := newTestLoader(t, t.TempDir())
		docs, err := loader.LoadHandbookData(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestLoadWebData(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	writeFixture(t, root, "raw/vau_scraped_latest.json", `[
		{"content": "welcome page", "url": "https://vau.ac.lk", "title": "Home", "source_type": "web"}
	]`)

	loader := newTestLoader(t, root)
	docs, err := loader.LoadWebData(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "welcome page", docs[0].Content)
	assert.Equal(t, "https://vau.ac.lk", docs[0].URL)
	assert.Equal(t, "Home", docs[0].Title)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("全量构建", func(t *testing.T) {
		root := t.TempDir()
		writeFixture(t, root, "raw/vau_scraped_latest.json",
			`[{"content": "`+longText(300)+`", "url": "https://vau.ac.lk", "title": "Home"}]`)
		writeFixture(t, root, "raw/fts_scraped_latest.json",
			`[{"content": "`+longText(200)+`", "faculty": "FTS", "title": "FTS Home"}]`)
		writeFixture(t, root, "processed/handbooks_processed_latest.json", `[
			{"faculty": "FAS", "department": "Physics", "year": 2024, "source_file": "h.pdf",
			 "pages": [{"page_number": 1, "content": "`+longText(150)+`"}]}
		]`)

		chk, err := chunker.New(800, 100)
		require.NoError(t, err)
		store := &fakeStore{}
		embedder := &fakeEmbedder{dimension: 4}

		builder, err := NewBuilder(newTestLoader(t, root), chk, embedder, store, []string{"FTS"}, 2)
		require.NoError(t, err)

		stats, err := builder.Build(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.WebDocs)
		assert.Equal(t, 1, stats.FacultyDocs)
		assert.Equal(t, 1, stats.HandbookPages)
		assert.Equal(t, 3, stats.TotalChunks)
		assert.Equal(t, 3, stats.Indexed)
		assert.True(t, store.ready)
		require.Len(t, store.upserted, 3)
		// 批大小为2，3条分片分两批
		assert.Equal(t, 2, embedder.calls)
	})

	t.Run("无语料时报错", func(t *testing.T) {
		chk, err := chunker.New(800, 100)
		require.NoError(t, err)

		builder, err := NewBuilder(newTestLoader(t, t.TempDir()), chk, &fakeEmbedder{dimension: 4}, &fakeStore{}, nil, 0)
		require.NoError(t, err)

		_, err = builder.Build(ctx)
		require.Error(t, err)
	})
}

func TestRebuild(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFixture(t, root, "raw/vau_scraped_latest.json",
		`[{"content": "`+longText(300)+`", "title": "Home"}]`)

	chk, err := chunker.New(800, 100)
	require.NoError(t, err)
	store := &fakeStore{}

	builder, err := NewBuilder(newTestLoader(t, root), chk, &fakeEmbedder{dimension: 4}, store, nil, 0)
	require.NoError(t, err)

	stats, err := builder.Rebuild(ctx)
	require.NoError(t, err)
	assert.True(t, store.deletedAll)
	assert.Equal(t, 1, stats.Indexed)
}
