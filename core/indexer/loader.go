package indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Malowking/uniask/core/errors"
	"github.com/Malowking/uniask/core/file_store"
	"github.com/Malowking/uniask/pkg/schema"
	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
)

// 采集脚本产出的语料文件路径
const (
	webDataFile      = "raw/vau_scraped_latest.json"
	handbookDataFile = "processed/handbooks_processed_latest.json"
)

func facultyDataFile(code string) string {
	return fmt.Sprintf("raw/%s_scraped_latest.json", strings.ToLower(code))
}

// handbookRecord 手册处理脚本的输出结构，每本手册带多页内容
type handbookRecord struct {
	Faculty    string `json:"faculty"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	SourceFile string `json:"source_file"`
	Pages      []struct {
		PageNumber int    `json:"page_number"`
		Content    string `json:"content"`
	} `json:"pages"`
}

// Loader 从文件存储加载采集语料
type Loader struct {
	storage file_store.Storage
}

// NewLoader 创建语料加载器
func NewLoader(storage file_store.Storage) (*Loader, error) {
	if storage == nil {
		return nil, errors.New(errors.ErrConfigMissing, "file storage is required")
	}
	return &Loader{storage: storage}, nil
}

// loadDocumentFile 读取一个JSON文档数组，文件缺失时告警并返回空列表
func (l *Loader) loadDocumentFile(ctx context.Context, name string) ([]*schema.Document, error) {
	exists, err := l.storage.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		g.Log().Warningf(ctx, "Data file not found: %s", name)
		return []*schema.Document{}, nil
	}

	data, err := l.storage.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	var docs []*schema.Document
	if err := sonic.Unmarshal(data, &docs); err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to parse %s: %v", name, err)
	}
	return docs, nil
}

// LoadWebData 加载大学主站的采集数据
func (l *Loader) LoadWebData(ctx context.Context) ([]*schema.Document, error) {
	g.Log().Info(ctx, "Loading web data...")
	docs, err := l.loadDocumentFile(ctx, webDataFile)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "Loaded %d web documents", len(docs))
	return docs, nil
}

// LoadFacultyData 加载单个学院站点的采集数据
func (l *Loader) LoadFacultyData(ctx context.Context, facultyCode string) ([]*schema.Document, error) {
	g.Log().Infof(ctx, "Loading faculty data for %s...", facultyCode)
	docs, err := l.loadDocumentFile(ctx, facultyDataFile(facultyCode))
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "Loaded %d faculty documents", len(docs))
	return docs, nil
}

// LoadHandbookData 加载处理后的学生手册数据，按页展开成独立文档
func (l *Loader) LoadHandbookData(ctx context.Context) ([]*schema.Document, error) {
	g.Log().Info(ctx, "Loading handbook data...")

	exists, err := l.storage.Exists(ctx, handbookDataFile)
	if err != nil {
		return nil, err
	}
	if !exists {
		g.Log().Warningf(ctx, "Handbook data not found: %s", handbookDataFile)
		return []*schema.Document{}, nil
	}

	data, err := l.storage.ReadFile(ctx, handbookDataFile)
	if err != nil {
		return nil, err
	}

	var handbooks []*handbookRecord
	if err := sonic.Unmarshal(data, &handbooks); err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to parse %s: %v", handbookDataFile, err)
	}

	documents := make([]*schema.Document, 0)
	for _, handbook := range handbooks {
		for _, page := range handbook.Pages {
			documents = append(documents, &schema.Document{
				Content: page.Content,
				Metadata: map[string]string{
					schema.MetaSourceType: schema.SourceTypeHandbook,
					schema.MetaFaculty:    handbook.Faculty,
					schema.MetaDepartment: handbook.Department,
					schema.MetaYear:       strconv.Itoa(handbook.Year),
					schema.MetaPageNumber: strconv.Itoa(page.PageNumber),
					schema.MetaSourceFile: handbook.SourceFile,
					schema.MetaTitle: fmt.Sprintf("%s %s Handbook - Page %d",
						handbook.Faculty, handbook.Department, page.PageNumber),
				},
			})
		}
	}

	g.Log().Infof(ctx, "Loaded %d handbook pages", len(documents))
	return documents, nil
}
