package effects

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"golang.org/x/image/draw"
)

const (
	vignetteInner = 0.2 // 内半径占宽度比例
	vignetteOuter = 0.8
	grainDensity  = 0.05
	grainAlpha    = 16
	// 噪点层整体不透明度，约 8%
	grainMaskAlpha = 20
)

// vignetteStops 为径向渐变的 (位置, 不透明度) 节点。
var vignetteStops = [][2]float64{{0, 0}, {0.6, 0.02}, {1, 0.15}}

// Scanner 模拟扫描件：边缘压暗的径向晕影加上稀疏噪点。
type Scanner struct{}

func (Scanner) apply(img *image.RGBA, rng *rand.Rand) {
	vignette(img)
	grain(img, rng)
}

func vignette(img *image.RGBA) {
	b := img.Bounds()
	w := float64(b.Dx())
	if w == 0 {
		return
	}
	cx, cy := w/2, float64(b.Dy())/2
	r0, r1 := vignetteInner*w, vignetteOuter*w
	for y := b.Min.Y; y < b.Max.Y; y++ {
		py := float64(y-b.Min.Y) + 0.5 - cy
		for x := b.Min.X; x < b.Max.X; x++ {
			px := float64(x-b.Min.X) + 0.5 - cx
			t := (math.Hypot(px, py) - r0) / (r1 - r0)
			multiplyBlack(img, x, y, stopAlpha(t))
		}
	}
}

func stopAlpha(t float64) float64 {
	if t <= vignetteStops[0][0] {
		return vignetteStops[0][1]
	}
	for i := 1; i < len(vignetteStops); i++ {
		prev, next := vignetteStops[i-1], vignetteStops[i]
		if t <= next[0] {
			f := (t - prev[0]) / (next[0] - prev[0])
			return prev[1] + f*(next[1]-prev[1])
		}
	}
	return vignetteStops[len(vignetteStops)-1][1]
}

// grain 在约 5% 的像素上撒半透明黑点，再以 8% 不透明度合成到页面。
func grain(img *image.RGBA, rng *rand.Rand) {
	b := img.Bounds()
	layer := image.NewRGBA(b)
	dot := color.RGBA{A: grainAlpha}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rng.Float64() < grainDensity {
				layer.SetRGBA(x, y, dot)
			}
		}
	}
	mask := image.NewUniform(color.Alpha{A: grainMaskAlpha})
	draw.DrawMask(img, b, layer, b.Min, mask, image.Point{}, draw.Over)
}
