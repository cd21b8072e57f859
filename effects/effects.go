// Package effects 提供页面位图的后期效果：光照阴影与扫描件质感。
package effects

import (
	"fmt"
	"image"
	"math/rand/v2"
	"strings"

	"github.com/ByLCY/inkpage/renderer"
)

// Kind 是一次生成选定的效果种类。
type Kind int

const (
	KindNone Kind = iota
	KindShadow
	KindScanner
)

func (k Kind) String() string {
	switch k {
	case KindShadow:
		return "shadow"
	case KindScanner:
		return "scanner"
	default:
		return "none"
	}
}

// ParseKind 解析效果名称，空字符串视为 none。
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return KindNone, nil
	case "shadow", "shadows":
		return KindShadow, nil
	case "scanner", "scan":
		return KindScanner, nil
	}
	return KindNone, fmt.Errorf("未知的效果：%s", name)
}

// Pass 是一次生成内固定下来的效果参数，所有页面共用同一个阴影角度。
type Pass struct {
	kind   Kind
	shadow Shadow
	rng    *rand.Rand
}

// NewPass 为一次生成确定效果参数；rng 为 nil 时使用随机种子。
func NewPass(kind Kind, rng *rand.Rand) *Pass {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := &Pass{kind: kind, rng: rng}
	if kind == KindShadow {
		p.shadow = Shadow{Angle: rng.Float64() * 360}
	}
	return p
}

// Kind 返回本次生成的效果种类。
func (p *Pass) Kind() Kind { return p.kind }

// Overlay 返回需要在捕获阶段合成的叠加层，只有阴影效果有叠加层。
func (p *Pass) Overlay() renderer.Overlay {
	if p.kind != KindShadow {
		return nil
	}
	return p.shadow
}

// Apply 对已捕获的位图施加捕获后效果（扫描件）。阴影已在捕获时合成，此处不再处理。
func (p *Pass) Apply(img *image.RGBA) *image.RGBA {
	if p.kind == KindScanner {
		Scanner{}.apply(img, p.rng)
	}
	return img
}

// Apply 对单张位图施加完整效果，尺寸保持不变；none 原样返回。
func Apply(img *image.RGBA, kind Kind, rng *rand.Rand) *image.RGBA {
	if img == nil {
		return nil
	}
	pass := NewPass(kind, rng)
	if overlay := pass.Overlay(); overlay != nil {
		overlay.Composite(img)
	}
	return pass.Apply(img)
}

// multiplyBlack 以不透明度 a 的黑色做正片叠底，img 为预乘 alpha。
func multiplyBlack(img *image.RGBA, x, y int, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	i := img.PixOffset(x, y)
	px := img.Pix[i : i+4 : i+4]
	keep := 1 - a
	px[0] = uint8(float64(px[0]) * keep)
	px[1] = uint8(float64(px[1]) * keep)
	px[2] = uint8(float64(px[2]) * keep)
	px[3] = uint8(a*255 + float64(px[3])*keep + 0.5)
}
