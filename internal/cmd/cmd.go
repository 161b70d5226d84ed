package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/uniask/core/generator"
	"github.com/Malowking/uniask/core/indexer"
	"github.com/Malowking/uniask/internal/controller/uniask"
	"github.com/Malowking/uniask/internal/service"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/os/gcmd"
)

var (
	Main = &gcmd.Command{
		Name:  "main",
		Usage: "main",
		Brief: "start http server",
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			// 启动前完成核心组件初始化，配置问题尽早暴露
			if err := warmUp(ctx); err != nil {
				return err
			}

			s := g.Server()
			s.Group("/api", func(group *ghttp.RouterGroup) {
				group.Middleware(MiddlewareHandlerResponse, ghttp.MiddlewareCORS)
				group.Bind(
					uniask.NewV1(),
				)
			})
			s.Run()
			return nil
		},
	}

	Ask = &gcmd.Command{
		Name:  "ask",
		Usage: "ask [--faculty FAS|FBS|FTS] <question>",
		Brief: "answer a question from the terminal",
		Arguments: []gcmd.Argument{
			{Name: "faculty", Short: "f", Brief: "restrict retrieval to one faculty (FAS/FBS/FTS)"},
		},
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			args := parser.GetArgAll()
			if len(args) < 3 {
				return fmt.Errorf("usage: ask [--faculty FAS|FBS|FTS] <question>")
			}
			query := strings.Join(args[2:], " ")

			gen, err := service.Generator()
			if err != nil {
				return err
			}

			resp, err := gen.Generate(ctx, &generator.Request{
				Query:   query,
				Faculty: parser.GetOpt("faculty").String(),
			})
			if err != nil {
				return err
			}

			fmt.Println(generator.FormatForDisplay(resp))
			return nil
		},
	}

	Build = &gcmd.Command{
		Name:  "build",
		Usage: "build [--rebuild]",
		Brief: "build the knowledge base from collected data files",
		Arguments: []gcmd.Argument{
			{Name: "rebuild", Short: "r", Brief: "drop the existing index before building", Orphan: true},
		},
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			builder, err := service.Builder()
			if err != nil {
				return err
			}

			stats, err := buildKnowledgeBase(ctx, builder, parser.GetOpt("rebuild") != nil)
			if err != nil {
				return err
			}

			fmt.Printf("Knowledge base build complete:\n")
			fmt.Printf("  web documents:   %d\n", stats.WebDocs)
			fmt.Printf("  faculty docs:    %d\n", stats.FacultyDocs)
			fmt.Printf("  handbook pages:  %d\n", stats.HandbookPages)
			fmt.Printf("  chunks indexed:  %d/%d\n", stats.Indexed, stats.TotalChunks)
			fmt.Printf("  index size:      %d\n", stats.IndexCount)
			return nil
		},
	}
)

func init() {
	if err := Main.AddCommand(Build, Ask); err != nil {
		panic(err)
	}
}

func buildKnowledgeBase(ctx context.Context, builder *indexer.Builder, rebuild bool) (*indexer.BuildStats, error) {
	if rebuild {
		return builder.Rebuild(ctx)
	}
	return builder.Build(ctx)
}

// warmUp 预热核心组件，任何一步失败即终止启动
func warmUp(ctx context.Context) error {
	store, err := service.VectorStore()
	if err != nil {
		return err
	}
	if err := store.EnsureReady(ctx); err != nil {
		return err
	}
	if _, err := service.Embedder(); err != nil {
		return err
	}
	if _, err := service.Generator(); err != nil {
		return err
	}
	g.Log().Info(ctx, "✓ All components initialized successfully")
	return nil
}
