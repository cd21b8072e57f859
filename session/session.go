// Package session 串起一次完整的生成：分词、分页、逐页捕获、施加效果并放入画廊。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ByLCY/inkpage/effects"
	"github.com/ByLCY/inkpage/gallery"
	"github.com/ByLCY/inkpage/layout"
	"github.com/ByLCY/inkpage/markup"
	"github.com/ByLCY/inkpage/renderer"
)

// ErrBusy 表示已有一次生成正在进行。
var ErrBusy = errors.New("generation already running")

// Options 配置生成器依赖。
type Options struct {
	Surface    renderer.Surface
	Gallery    *gallery.Gallery
	Hyphenator layout.Hyphenator
	Logger     *slog.Logger
	// Yield 在每页捕获前调用，让出执行权，返回错误则中止生成。
	Yield func(ctx context.Context) error
	Rand  *rand.Rand
}

// RunOptions 是单次生成的参数。
type RunOptions struct {
	Effect       effects.Kind
	Scale        float64
	Transparent  bool
	StrictMarkup bool
}

// Report 汇总一次生成的结果。
type Report struct {
	Run      int
	Capacity float64
	Pages    []layout.PageContent
	Appended int
	Elapsed  time.Duration
}

// Generator 持有画廊并保证同一时间只有一次生成。
type Generator struct {
	surface    renderer.Surface
	gallery    *gallery.Gallery
	hyphenator layout.Hyphenator
	logger     *slog.Logger
	yield      func(ctx context.Context) error
	rng        *rand.Rand

	busy atomic.Bool
	runs atomic.Int64
}

// New 创建生成器；未提供画廊时新建一个。
func New(opts Options) (*Generator, error) {
	if opts.Surface == nil {
		return nil, fmt.Errorf("缺少渲染面")
	}
	g := &Generator{
		surface:    opts.Surface,
		gallery:    opts.Gallery,
		hyphenator: opts.Hyphenator,
		logger:     opts.Logger,
		yield:      opts.Yield,
		rng:        opts.Rand,
	}
	if g.gallery == nil {
		g.gallery = gallery.New()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.yield == nil {
		g.yield = defaultYield
	}
	return g, nil
}

func defaultYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Gallery 返回生成器拥有的画廊。
func (g *Generator) Gallery() *gallery.Gallery { return g.gallery }

// Busy 报告当前是否有生成正在进行。
func (g *Generator) Busy() bool { return g.busy.Load() }

// Generate 对文档执行一次完整生成。分页失败时画廊不变；
// 某页捕获失败时停止，之前的页面保留在画廊中。
func (g *Generator) Generate(ctx context.Context, doc string, opts RunOptions) (report Report, err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return Report{}, ErrBusy
	}
	defer g.busy.Store(false)

	started := time.Now()
	run := int(g.runs.Add(1))
	logger := g.logger.With("run", run)
	report = Report{Run: run, Capacity: g.surface.Capacity()}
	defer func() { report.Elapsed = time.Since(started) }()

	tokens := markup.Tokenize(doc)
	pages, err := layout.Paginate(ctx, tokens, report.Capacity, g.surface, layout.PaginateOptions{
		Hyphenator:   g.hyphenator,
		Logger:       logger,
		StrictMarkup: opts.StrictMarkup,
	})
	if err != nil {
		return report, fmt.Errorf("分页失败: %w", err)
	}
	report.Pages = pages
	logger.Info("分页完成", "tokens", tokens.Len(), "pages", len(pages), "capacity", report.Capacity)

	pass := effects.NewPass(opts.Effect, g.rng)
	capture := renderer.CaptureOptions{
		Scale:       opts.Scale,
		Transparent: opts.Transparent,
		Overlay:     pass.Overlay(),
	}
	for _, page := range pages {
		if err := g.yield(ctx); err != nil {
			return report, fmt.Errorf("第 %d 页捕获前中止: %w", page.Index+1, err)
		}
		img, err := g.surface.Capture(ctx, page.Markup, capture)
		if err != nil {
			logger.Error("页面捕获失败", "page", page.Index, "err", err)
			if !errors.Is(err, renderer.ErrCapture) {
				err = fmt.Errorf("%w: %w", renderer.ErrCapture, err)
			}
			return report, fmt.Errorf("第 %d 页: %w", page.Index+1, err)
		}
		g.gallery.Append(&gallery.Artifact{
			Run:    run,
			Page:   page.Index,
			Image:  pass.Apply(img),
			Effect: pass.Kind().String(),
		})
		report.Appended++
	}
	logger.Info("生成完成", "appended", report.Appended, "effect", pass.Kind().String())
	return report, nil
}
