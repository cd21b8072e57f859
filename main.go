package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/inkpage/assemble"
	"github.com/ByLCY/inkpage/binding"
	"github.com/ByLCY/inkpage/dsl"
	"github.com/ByLCY/inkpage/effects"
	"github.com/ByLCY/inkpage/hyphen"
	"github.com/ByLCY/inkpage/layout"
	"github.com/ByLCY/inkpage/markup"
	canvasrenderer "github.com/ByLCY/inkpage/renderer/canvas"
	"github.com/ByLCY/inkpage/session"
)

type config struct {
	input     string
	sheetPath string
	dataJSON  string
	outDir    string
	pdfPath   string
	effect    string
	scale     float64
	debugPath string
	strict    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/letter.html", "文档路径（.html/.txt/.md）")
	flag.StringVar(&cfg.sheetPath, "sheet", "", "纸张配置文件路径，缺省使用内置 A4 横线纸")
	flag.StringVar(&cfg.dataJSON, "data", "", "绑定到文档 ${...} 占位符的 JSON 数据")
	flag.StringVar(&cfg.outDir, "out", "output", "逐页图片输出目录，为空则不输出图片")
	flag.StringVar(&cfg.pdfPath, "pdf", "", "PDF 输出路径")
	flag.StringVar(&cfg.effect, "effect", "", "覆盖效果：none/shadow/scanner")
	flag.Float64Var(&cfg.scale, "scale", 0, "覆盖栅格化倍数")
	flag.StringVar(&cfg.debugPath, "debug", "", "分页调试 JSON 输出路径")
	flag.BoolVar(&cfg.strict, "strict", false, "页面边界落在元素内部时报错")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(context.Background(), cfg, logger); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
}

// run 串联读取、分页、捕获与导出。
func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	sheet, err := loadSheet(cfg.sheetPath)
	if err != nil {
		return err
	}
	if cfg.effect != "" {
		sheet.Output.Effect = cfg.effect
	}
	if cfg.scale > 0 {
		sheet.Output.Scale = cfg.scale
	}
	kind, err := effects.ParseKind(sheet.Output.Effect)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cfg.input, cfg.dataJSON)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(cfg.input)
	surface := canvasrenderer.New(sheet, baseDir).WithLogger(logger)
	gen, err := session.New(session.Options{
		Surface:    surface,
		Hyphenator: loadHyphenator(sheet, cfg.sheetPath, logger),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	report, genErr := gen.Generate(ctx, doc, session.RunOptions{
		Effect:       kind,
		Scale:        sheet.Output.Scale,
		Transparent:  sheet.Output.Transparent,
		StrictMarkup: cfg.strict,
	})
	if cfg.debugPath != "" && report.Pages != nil {
		if err := writeDebug(&layout.Plan{Capacity: report.Capacity, Sheet: sheet, Pages: report.Pages}, cfg.debugPath); err != nil {
			return err
		}
	}
	if genErr != nil && report.Appended == 0 {
		return genErr
	}
	if genErr != nil {
		// 已捕获的页面仍然导出
		logger.Warn("生成未完成，导出已有页面", "appended", report.Appended, "err", genErr)
	}

	artifacts := gen.Gallery().Snapshot()
	if cfg.outDir != "" {
		paths, err := assemble.WriteImages(cfg.outDir, artifacts, sheet.Output.Format, sheet.Output.Quality)
		if err != nil {
			return fmt.Errorf("导出图片失败: %w", err)
		}
		fmt.Printf("已输出 %d 张图片到 %s\n", len(paths), cfg.outDir)
	}
	if cfg.pdfPath != "" {
		opts := assemble.DefaultOptions()
		opts.Meta = sheet.Output.Meta
		if err := os.MkdirAll(filepath.Dir(cfg.pdfPath), 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
		if err := assemble.AssembleFile(cfg.pdfPath, artifacts, opts); err != nil {
			return fmt.Errorf("生成 PDF 失败: %w", err)
		}
		fmt.Printf("已生成 PDF：%s\n", cfg.pdfPath)
	}
	fmt.Println(gen.Gallery().Header())
	return genErr
}

func loadSheet(path string) (layout.Sheet, error) {
	if path == "" {
		return layout.DefaultSheet(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.Sheet{}, fmt.Errorf("无法打开纸张配置 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return layout.Sheet{}, fmt.Errorf("解析纸张配置失败: %w", err)
	}
	sheet, err := layout.Build(doc)
	if err != nil {
		return layout.Sheet{}, fmt.Errorf("纸张配置无效: %w", err)
	}
	return sheet, nil
}

// loadDocument 读取文档并统一转换为标记，随后绑定数据。
func loadDocument(path, dataJSON string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("无法读取文档 %s: %w", path, err)
	}
	var doc string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		if doc, err = markup.FromMarkdown(raw); err != nil {
			return "", err
		}
	case ".txt", ".text":
		doc = markup.FromPlainText(string(raw))
	default:
		doc = string(raw)
	}
	if dataJSON == "" {
		return doc, nil
	}
	data, err := binding.Parse([]byte(dataJSON))
	if err != nil {
		return "", err
	}
	return binding.Bind(doc, data)
}

// loadHyphenator 加载断词模式；失败只记录警告，生成照常进行。
func loadHyphenator(sheet layout.Sheet, sheetPath string, logger *slog.Logger) layout.Hyphenator {
	path := sheet.Output.Hyphenation
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) && sheetPath != "" {
		path = filepath.Join(filepath.Dir(sheetPath), path)
	}
	patterns, err := hyphen.LoadFile(path, sheet.Output.Language)
	if err != nil {
		logger.Warn("断词不可用，按原文排版", "patterns", path, "err", err)
		return nil
	}
	return patterns
}

func writeDebug(plan *layout.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plan, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
