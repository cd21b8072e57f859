// Package assemble 把画廊中的页面按顺序拼成一份 PDF，或逐张导出为图片。
package assemble

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/inkpage/gallery"
	"github.com/ByLCY/inkpage/layout"
)

// ErrEmptyInput 表示没有可导出的页面。
var ErrEmptyInput = errors.New("empty input")

// Inset 为页面内边距（mm）。
type Inset struct {
	Top, Right, Bottom, Left float64
}

// Options 描述输出 PDF 的物理页面与元信息。
type Options struct {
	Width  float64 // mm
	Height float64 // mm
	Inset  Inset
	Meta   layout.DocumentMeta
}

// DefaultOptions 返回 A4 纵向页面，左右各留 25pt、上 50pt、下 30pt。
func DefaultOptions() Options {
	return Options{
		Width:  210,
		Height: 297,
		Inset: Inset{
			Top:    50 * layout.PtToMm,
			Right:  25 * layout.PtToMm,
			Bottom: 30 * layout.PtToMm,
			Left:   25 * layout.PtToMm,
		},
		Meta: layout.DocumentMeta{Creator: "inkpage"},
	}
}

// Placement 是一张位图在 PDF 页面上的位置（mm，左上角为原点）。
type Placement struct {
	Page     int
	Artifact int
	X, Y     float64
	Width    float64
	Height   float64
}

// Plan 计算每张位图的摆放：等比缩放进内边距矩形，水平居中、顶端对齐。
func Plan(artifacts []*gallery.Artifact, opts Options) ([]Placement, error) {
	if len(artifacts) == 0 {
		return nil, ErrEmptyInput
	}
	boxW := opts.Width - opts.Inset.Left - opts.Inset.Right
	boxH := opts.Height - opts.Inset.Top - opts.Inset.Bottom
	if boxW <= 0 || boxH <= 0 {
		return nil, fmt.Errorf("页面内边距过大：可用区域 %.1fx%.1fmm", boxW, boxH)
	}
	out := make([]Placement, 0, len(artifacts))
	for i, a := range artifacts {
		if a == nil || a.Image == nil || a.Image.Bounds().Empty() {
			return nil, fmt.Errorf("第 %d 页没有位图", i+1)
		}
		b := a.Image.Bounds()
		scale := math.Min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
		w, h := float64(b.Dx())*scale, float64(b.Dy())*scale
		out = append(out, Placement{
			Page:     i,
			Artifact: a.ID,
			X:        opts.Inset.Left + (boxW-w)/2,
			Y:        opts.Inset.Top,
			Width:    w,
			Height:   h,
		})
	}
	return out, nil
}

// Assemble 写出多页 PDF，每张位图一页，顺序与传入顺序一致。
func Assemble(w io.Writer, artifacts []*gallery.Artifact, opts Options) error {
	placements, err := Plan(artifacts, opts)
	if err != nil {
		return err
	}

	writer := pdf.New(w, opts.Width, opts.Height, nil)
	applyMeta(writer, opts.Meta)
	for i, place := range placements {
		if i > 0 {
			writer.NewPage(opts.Width, opts.Height)
		}
		c := canvas.New(opts.Width, opts.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV)
		img := artifacts[i].Image
		dpmm := float64(img.Bounds().Dx()) / place.Width
		ctx.DrawImage(place.X, place.Y, img, canvas.DPMM(dpmm))
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

// AssembleFile 把 PDF 写到 path。
func AssembleFile(path string, artifacts []*gallery.Artifact, opts Options) error {
	if len(artifacts) == 0 {
		return ErrEmptyInput
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 PDF 文件失败: %w", err)
	}
	if err := Assemble(f, artifacts, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// WriteImages 按顺序把每页写成 page-001.jpg 这样的文件，返回写出的路径。
func WriteImages(dir string, artifacts []*gallery.Artifact, format string, quality int) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, ErrEmptyInput
	}
	ext := "jpg"
	if strings.EqualFold(format, "png") {
		ext = "png"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for i, a := range artifacts {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.%s", i+1, ext))
		if err := writeImage(path, a, ext, quality); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, a *gallery.Artifact, format string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建图片文件失败: %w", err)
	}
	if err := a.Encode(f, format, quality); err != nil {
		f.Close()
		return fmt.Errorf("写出 %s 失败: %w", filepath.Base(path), err)
	}
	return f.Close()
}
