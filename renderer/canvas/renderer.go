package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/inkpage/layout"
	"github.com/ByLCY/inkpage/renderer"
)

const (
	ruleWidth = 0.2
	// 基础分辨率为 96 dpi，与 CSS 像素一致
	baseDPMM = 96 / 25.4
)

// Surface 使用 github.com/tdewolff/canvas 排版并栅格化一张纸。
// 同一个 Surface 可以被并发测量，字体与图片按需加载并缓存。
type Surface struct {
	sheet   layout.Sheet
	baseDir string
	logger  *slog.Logger

	fontMu sync.Mutex
	faces  map[faceKey]*canvas.FontFace

	imgMu  sync.Mutex
	images map[string]imageEntry
}

var _ renderer.Surface = (*Surface)(nil)

// New 创建渲染面，baseDir 用于解析字体、图片与纸张背景的相对路径。
func New(sheet layout.Sheet, baseDir string) *Surface {
	return &Surface{
		sheet:   sheet,
		baseDir: baseDir,
		logger:  slog.Default(),
		faces:   map[faceKey]*canvas.FontFace{},
		images:  map[string]imageEntry{},
	}
}

// WithLogger 设置记录字体回退等警告的日志，需在首次测量前调用。
func (s *Surface) WithLogger(logger *slog.Logger) *Surface {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Sheet 返回渲染面使用的纸张配置。
func (s *Surface) Sheet() layout.Sheet { return s.sheet }

// Capacity 返回空白页内容区的高度（mm）。
func (s *Surface) Capacity() float64 { return s.sheet.Paper.ContentHeight() }

// Measure 返回 markup 在内容区宽度下排版后的高度（mm）。
// 无法读取的图片按一行高度占位，真正的错误留到 Capture 时报告。
func (s *Surface) Measure(ctx context.Context, markup string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	lines, err := s.layout(markup, s.sheet.Paper.ContentWidth(), false)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", renderer.ErrMeasurement, err)
	}
	return totalHeight(lines), nil
}

// Capture 绘制整张纸并栅格化为位图。
func (s *Surface) Capture(ctx context.Context, markup string, opts renderer.CaptureOptions) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", renderer.ErrCapture, err)
	}
	paper := s.sheet.Paper
	lines, err := s.layout(markup, paper.ContentWidth(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", renderer.ErrCapture, err)
	}

	c := canvas.New(paper.Width, paper.Height)
	cctx := canvas.NewContext(c)
	cctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if !opts.Transparent {
		if err := s.drawPaper(cctx); err != nil {
			return nil, fmt.Errorf("%w: %w", renderer.ErrCapture, err)
		}
	}
	s.drawRules(cctx)
	if err := s.drawLines(cctx, lines); err != nil {
		return nil, fmt.Errorf("%w: %w", renderer.ErrCapture, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", renderer.ErrCapture, err)
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	img := rasterizer.Draw(c, canvas.DPMM(baseDPMM*scale), canvas.DefaultColorSpace)
	if opts.Overlay != nil {
		opts.Overlay.Composite(img)
	}
	return img, nil
}

// layout 排版 markup；strict 为真时图片读取失败直接报错。
func (s *Surface) layout(markup string, width float64, strict bool) ([]line, error) {
	var faceErr error
	measure := func(text string, style runStyle) float64 {
		face, err := s.face(style)
		if err != nil {
			faceErr = err
			return 0
		}
		return face.TextWidth(text)
	}
	w := newWrapper(width, s.sheet.Ink.LineHeight, s.sheet.Ink.WordSpacing, measure)
	size := func(p piece) (image.Image, float64, float64, error) {
		img, err := s.loadImage(p.src)
		if err != nil {
			if strict {
				return nil, 0, 0, err
			}
			return nil, 0, s.sheet.Ink.LineHeight, nil
		}
		iw, ih := imageSize(img, p, width)
		return img, iw, ih, nil
	}
	lines, err := wrapPieces(parseRuns(markup), w, size)
	if err != nil {
		return nil, err
	}
	if faceErr != nil {
		return nil, faceErr
	}
	return lines, nil
}

func (s *Surface) drawPaper(ctx *canvas.Context) error {
	paper := s.sheet.Paper
	ctx.SetFillColor(colorFromLayout(paper.Color))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(paper.Width, paper.Height))
	if paper.Background == "" {
		return nil
	}
	bg, err := s.loadImage(paper.Background)
	if err != nil {
		return fmt.Errorf("纸张背景: %w", err)
	}
	// 背景图按纸张宽度铺满
	dpmm := float64(bg.Bounds().Dx()) / paper.Width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(0, 0, bg, canvas.DPMM(dpmm))
	return nil
}

// drawRules 绘制横线与页边线。
func (s *Surface) drawRules(ctx *canvas.Context) {
	paper := s.sheet.Paper
	lh := s.sheet.Ink.LineHeight
	if paper.Lines && lh > 0 {
		ctx.SetStrokeColor(colorFromLayout(paper.LineColor))
		ctx.SetStrokeWidth(ruleWidth)
		bottom := paper.Height - paper.Margin.Bottom
		for y := paper.ContentTop() + lh; y <= bottom+1e-9; y += lh {
			drawSegment(ctx, 0, y, paper.Width, y)
		}
	}
	if paper.Margined {
		ctx.SetStrokeColor(colorFromLayout(paper.MarginColor))
		ctx.SetStrokeWidth(ruleWidth * 2)
		x := math.Max(paper.Margin.Left-2, 0)
		drawSegment(ctx, x, 0, x, paper.Height)
	}
}

func drawSegment(ctx *canvas.Context, x1, y1, x2, y2 float64) {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	ctx.DrawPath(x1, y1, p)
}

func (s *Surface) drawLines(ctx *canvas.Context, lines []line) error {
	paper := s.sheet.Paper
	ink := s.sheet.Ink
	left := paper.Margin.Left
	cursorY := paper.ContentTop()
	for _, ln := range lines {
		// 文字落在该行最后一个行高格内，垂直居中
		slotTop := cursorY + ln.height - ink.LineHeight
		for _, item := range ln.items {
			if item.img != nil {
				dpmm := float64(item.img.Bounds().Dx()) / item.width
				if dpmm <= 0 || math.IsInf(dpmm, 0) {
					continue
				}
				ctx.DrawImage(left+item.x, cursorY+ln.height-item.imgH, item.img, canvas.DPMM(dpmm))
				continue
			}
			if item.text == "" {
				continue
			}
			face, err := s.face(item.style)
			if err != nil {
				return err
			}
			metrics := face.Metrics()
			baseline := slotTop + (ink.LineHeight+metrics.Ascent-metrics.Descent)/2
			ctx.DrawText(left+item.x, baseline, canvas.NewTextLine(face, item.text, canvas.Left))
			s.decorate(ctx, item, left+item.x, baseline, metrics.Ascent)
		}
		cursorY += ln.height
	}
	return nil
}

// decorate 绘制下划线与删除线。
func (s *Surface) decorate(ctx *canvas.Context, item placed, x, baseline, ascent float64) {
	if !item.style.underline && !item.style.strike {
		return
	}
	size := s.sheet.Ink.FontSize
	ctx.SetStrokeColor(colorFromLayout(s.sheet.Ink.Color))
	ctx.SetStrokeWidth(size * 0.06)
	if item.style.underline {
		y := baseline + size*0.12
		drawSegment(ctx, x, y, x+item.width, y)
	}
	if item.style.strike {
		y := baseline - ascent*0.3
		drawSegment(ctx, x, y, x+item.width, y)
	}
}
